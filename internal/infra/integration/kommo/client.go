package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

var ErrNotConfigured = errors.New("kommo não configurado")

type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiToken, baseURL string) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SyncLead leva uma lead recém-criada para o CRM.
func (c *Client) SyncLead(ctx context.Context, event queue.LeadEvent) error {
	_, err := c.CreateLead(ctx, CreateLeadInput{
		LeadID: event.LeadID,
		Name:   event.Name,
		Email:  event.Email,
		Phone:  event.Phone,
	})
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	leadData := []map[string]any{
		{
			"name": fmt.Sprintf("%s - %s", input.LeadID, input.Name),
			"_embedded": map[string]any{
				"tags": []map[string]any{
					{"name": "prospect"},
				},
				"contacts": []map[string]any{
					{"id": contactID},
				},
			},
		},
	}

	var result embeddedLeads
	status, err := c.do(ctx, http.MethodPost, "/leads", leadData, &result)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar lead: %w", err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("erro ao criar lead: status %d", status)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, errors.New("lead não criada no kommo")
	}

	kommoID := result.Embedded.Leads[0].ID
	log.Info().Int("kommo_id", kommoID).Str("lead_id", input.LeadID).Msg("kommo: lead criada")
	return kommoID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	contactID, err := c.findContactByPhone(ctx, input.Phone)
	if err != nil {
		return 0, err
	}
	if contactID > 0 {
		return contactID, nil
	}
	return c.createContact(ctx, input)
}

// findContactByPhone devolve 0 quando não há contato (Kommo responde 204).
func (c *Client) findContactByPhone(ctx context.Context, phone string) (int, error) {
	var result embeddedContacts
	status, err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(phone), nil, &result)
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar contato: %w", err)
	}

	switch status {
	case http.StatusNoContent:
		return 0, nil
	case http.StatusOK:
		if len(result.Embedded.Contacts) > 0 {
			return result.Embedded.Contacts[0].ID, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("erro ao buscar contato: status %d", status)
	}
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	contactData := []map[string]any{
		{
			"name": input.Name,
			"custom_fields_values": []map[string]any{
				{
					"field_code": "PHONE",
					"values":     []map[string]any{{"value": input.Phone, "enum_code": "WORK"}},
				},
				{
					"field_code": "EMAIL",
					"values":     []map[string]any{{"value": input.Email, "enum_code": "WORK"}},
				},
			},
		},
	}

	var result embeddedContacts
	status, err := c.do(ctx, http.MethodPost, "/contacts", contactData, &result)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar contato: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return 0, fmt.Errorf("erro ao criar contato: status %d", status)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errors.New("erro ao obter ID do contato criado")
	}

	return result.Embedded.Contacts[0].ID, nil
}

// do envia o payload como JSON e decodifica respostas 2xx com corpo em out.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && len(raw) > 0 && out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("resposta inválida do kommo: %w", err)
		}
	}

	return resp.StatusCode, nil
}
