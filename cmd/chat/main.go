// Package main is a terminal client for talking to a running assistant.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dodorico/property-assistant/internal/model"
)

var (
	serverURL string
	userID    string

	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	replyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	propertyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).PaddingLeft(2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	rootCmd = &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the property assistant",
		Long:  "Interactive terminal client for the property assistant. With no arguments it starts a conversation loop; with a message it sends a single query.",
		RunE:  run,
	}
)

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "assistant server URL")
	rootCmd.Flags().StringVar(&userID, "user", "cli-user", "user identifier for conversation state")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 2 * time.Minute}

	if len(args) > 0 {
		return send(client, strings.Join(args, " "))
	}

	fmt.Println(replyStyle.Render("Conectado. Escribí tu consulta (salir para terminar)."))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("vos> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "salir" || line == "exit" {
			break
		}
		if err := send(client, line); err != nil {
			fmt.Println(errorStyle.Render("error: " + err.Error()))
		}
	}
	return scanner.Err()
}

type chatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type chatResponse struct {
	OK         bool             `json:"ok"`
	Reply      string           `json:"respuesta"`
	Properties []model.Property `json:"propiedades"`
	Error      string           `json:"error"`
}

func send(client *http.Client, message string) error {
	body, err := json.Marshal(chatRequest{UserID: userID, Message: message})
	if err != nil {
		return err
	}

	resp, err := client.Post(serverURL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reply chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if reply.Error != "" {
			return fmt.Errorf("server: %s", reply.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	fmt.Println(replyStyle.Render(reply.Reply))
	for _, prop := range reply.Properties {
		line := prop.Title
		if prop.Price != nil {
			line += fmt.Sprintf(" | %s %.0f", prop.Currency, *prop.Price)
		}
		if prop.DetailURL != "" {
			line += " | " + prop.DetailURL
		}
		fmt.Println(propertyStyle.Render(line))
	}
	return nil
}
