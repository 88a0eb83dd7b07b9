package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TableName é a tabela única onde as leads vivem.
const TableName = "leads"

// ClientSince é a flag de ciclo de vida: zero = Prospect, >0 = Client (ms Unix).
// No JSON vira `false` enquanto a lead ainda é prospect.
type ClientSince int64

func (c ClientSince) IsSet() bool {
	return c > 0
}

func (c ClientSince) MarshalJSON() ([]byte, error) {
	if !c.IsSet() {
		return []byte("false"), nil
	}
	return []byte(strconv.FormatInt(int64(c), 10)), nil
}

func (c *ClientSince) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "false", "null":
		*c = 0
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("clientSince inválido: %w", err)
	}
	*c = ClientSince(ms)
	return nil
}

// Entidade: Lead
type Lead struct {
	ID            string      `json:"id"`
	Name          string      `json:"nome"`
	Email         string      `json:"email"`
	Phone         string      `json:"telefone"`
	ProspectSince int64       `json:"prospectSince"`
	ClientSince   ClientSince `json:"clientSince"`
}

// Factory: toda lead nasce Prospect.
func NewLead(id, name, email, phone string, now time.Time) *Lead {
	return &Lead{
		ID:            id,
		Name:          name,
		Email:         email,
		Phone:         phone,
		ProspectSince: now.UnixMilli(),
		ClientSince:   0,
	}
}

func (l *Lead) IsClient() bool {
	return l.ClientSince.IsSet()
}

// GetOutput espelha o resultado cru de um get na store.
type GetOutput struct {
	Item *Lead `json:"Item"`
}

// ScanOutput espelha o resultado cru de um scan completo da tabela.
type ScanOutput struct {
	Items        []Lead `json:"Items"`
	Count        int    `json:"Count"`
	ScannedCount int    `json:"ScannedCount"`
}

func NewScanOutput(items []Lead) *ScanOutput {
	if items == nil {
		items = []Lead{}
	}
	return &ScanOutput{
		Items:        items,
		Count:        len(items),
		ScannedCount: len(items),
	}
}

// LeadUpdate é uma atualização parcial; campos nil não são tocados.
type LeadUpdate struct {
	ClientSince *ClientSince
}

// LeadStore é a capacidade de armazenamento key-value da tabela leads.
// Semântica last-write-wins, sem transação entre leitura e escrita.
type LeadStore interface {
	Get(ctx context.Context, id string) (lead *Lead, found bool, err error)
	Put(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, id string, changes LeadUpdate) error
	Delete(ctx context.Context, id string) error
	Scan(ctx context.Context) (*ScanOutput, error)
}
