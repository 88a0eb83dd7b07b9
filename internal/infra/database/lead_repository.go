package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const leadSchema = `
	CREATE TABLE IF NOT EXISTS leads (
		id             TEXT PRIMARY KEY,
		nome           TEXT NOT NULL,
		email          TEXT NOT NULL,
		telefone       TEXT NOT NULL,
		prospect_since BIGINT NOT NULL,
		client_since   BIGINT NULL
	)
`

// LeadRepository implementa entity.LeadStore sobre Postgres.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, leadSchema); err != nil {
		return fmt.Errorf("falha ao criar tabela leads: %w", err)
	}
	return nil
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*entity.Lead, bool, error) {
	query := `SELECT id, nome, email, telefone, prospect_since, client_since FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("erro ao buscar lead: %w", err)
	}
	return lead, true, nil
}

// Put sobrescreve o registro inteiro (last-write-wins).
func (r *LeadRepository) Put(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, nome, email, telefone, prospect_since, client_since)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			nome = EXCLUDED.nome,
			email = EXCLUDED.email,
			telefone = EXCLUDED.telefone,
			prospect_since = EXCLUDED.prospect_since,
			client_since = EXCLUDED.client_since
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.ProspectSince,
		nullClientSince(lead.ClientSince),
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, id string, changes entity.LeadUpdate) error {
	if changes.ClientSince == nil {
		return nil
	}

	query := `UPDATE leads SET client_since = $1 WHERE id = $2`
	if _, err := r.DB.ExecContext(ctx, query, nullClientSince(*changes.ClientSince), id); err != nil {
		return fmt.Errorf("erro ao atualizar lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("erro ao deletar lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Scan(ctx context.Context) (*entity.ScanOutput, error) {
	query := `SELECT id, nome, email, telefone, prospect_since, client_since FROM leads`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar leads: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao listar leads: %w", err)
	}

	return entity.NewScanOutput(leads), nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead        entity.Lead
		clientSince sql.NullInt64
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.ProspectSince,
		&clientSince,
	)
	if err != nil {
		return nil, err
	}

	if clientSince.Valid {
		lead.ClientSince = entity.ClientSince(clientSince.Int64)
	}
	return &lead, nil
}

func nullClientSince(c entity.ClientSince) sql.NullInt64 {
	if !c.IsSet() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(c), Valid: true}
}
