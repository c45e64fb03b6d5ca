package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

// Repository implements ICampaignRepository using SQL database
type Repository struct {
	db       *sql.DB
	postgres bool
}

// NewRepository creates a new campaign repository. driver is the database/sql driver name.
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, postgres: driver == "postgres"}
}

// InitializeSchema runs campaign migrations
func (r *Repository) InitializeSchema() error {
	migrations := r.getMigrations()
	for i, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			// Ignore "already exists" errors for idempotent migrations
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}
	}
	return nil
}

func (r *Repository) getMigrations() []string {
	return []string{
		// Migration 1: Saved bulk templates
		`CREATE TABLE IF NOT EXISTS campaign_templates (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			template TEXT NOT NULL DEFAULT '',
			caption TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
}

// rebind rewrites ? placeholders to $n for postgres
func (r *Repository) rebind(query string) string {
	if !r.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// SaveTemplate inserts the template or replaces the one with the same name
func (r *Repository) SaveTemplate(ctx context.Context, template *domainCampaign.SavedTemplate) error {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now()
	}
	if template.UpdatedAt.IsZero() {
		template.UpdatedAt = template.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO campaign_templates (id, name, template, caption, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			template = excluded.template,
			caption = excluded.caption,
			updated_at = excluded.updated_at
	`), template.ID.String(), template.Name, template.Template, template.Caption, template.CreatedAt, template.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save template %q: %w", template.Name, err)
	}
	return nil
}

func (r *Repository) GetTemplateByName(ctx context.Context, name string) (*domainCampaign.SavedTemplate, error) {
	template := &domainCampaign.SavedTemplate{}
	var idStr string
	err := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, name, template, caption, created_at, updated_at
		FROM campaign_templates WHERE name = ?
	`), name).Scan(&idStr, &template.Name, &template.Template, &template.Caption,
		&template.CreatedAt, &template.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template %q: %w", name, err)
	}
	template.ID, _ = uuid.Parse(idStr)
	return template, nil
}

func (r *Repository) ListTemplates(ctx context.Context) ([]*domainCampaign.SavedTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, template, caption, created_at, updated_at
		FROM campaign_templates ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []*domainCampaign.SavedTemplate{}
	for rows.Next() {
		t := &domainCampaign.SavedTemplate{}
		var idStr string
		if err := rows.Scan(&idStr, &t.Name, &t.Template, &t.Caption, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.ID, _ = uuid.Parse(idStr)
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *Repository) DeleteTemplate(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, r.rebind("DELETE FROM campaign_templates WHERE name = ?"), name)
	if err != nil {
		return fmt.Errorf("delete template %q: %w", name, err)
	}
	return nil
}
