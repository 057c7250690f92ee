// Package storage implements the Persistence Facade (§4.7): one row
// per document, keyed by number, in a Postgres table. Content-addressed
// fields (sha, commit_date) anchor idempotence; all derived fields
// (number_string, name, short_link, rendered_link) are stored alongside
// the primitives they're computed from, since denormalization simplifies
// readers (§6 "Persisted state layout").
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// ErrNotFound is returned when a requested document is not present.
var ErrNotFound = errors.New("record not found")

// DocumentRecord is the row shape for the documents table: every
// rfd.Document field plus the audit timestamps the table itself owns.
type DocumentRecord struct {
	Number        int       `db:"number"`
	NumberString  string    `db:"number_string"`
	Title         string    `db:"title"`
	Name          string    `db:"name"`
	State         string    `db:"state"`
	Link          string    `db:"link"`
	Discussion    string    `db:"discussion"`
	Authors       string    `db:"authors"`
	ContentKind   string    `db:"content_kind"`
	Content       string    `db:"content"`
	HTML          string    `db:"html"`
	SHA           string    `db:"sha"`
	CommitDate    time.Time `db:"commit_date"`
	ShortLink     string    `db:"short_link"`
	RenderedLink  string    `db:"rendered_link"`
	PDFLinkSource string    `db:"pdf_link_source"`
	PDFLinkDrive  string    `db:"pdf_link_drive"`
	PDFFilename   string    `db:"pdf_filename"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToDocument converts the stored record to the domain type.
func (r *DocumentRecord) ToDocument() rfd.Document {
	kind, _ := rfd.KindFromPath("x." + r.ContentKind)
	return rfd.Document{
		Number:        r.Number,
		Title:         r.Title,
		State:         rfd.State(r.State),
		Link:          r.Link,
		Discussion:    r.Discussion,
		Authors:       r.Authors,
		Content:       rfd.NewContent(kind, r.Content),
		HTML:          r.HTML,
		SHA:           r.SHA,
		CommitDate:    r.CommitDate,
		PDFLinkSource: r.PDFLinkSource,
		PDFLinkDrive:  r.PDFLinkDrive,
	}
}

// contentExtension returns the file extension (without the dot)
// matching kind, for round-tripping through rfd.KindFromPath.
func contentExtension(kind rfd.Kind) string {
	if kind == rfd.KindMarkdown {
		return "md"
	}
	return "adoc"
}

// RecordFromDocument builds the row representation of a Document,
// deriving number_string/name/short_link/rendered_link/pdf_filename
// from primitives, per the State Reconciler's contract (§4.5 step 4).
func RecordFromDocument(d rfd.Document, shortURLHost, renderedLinkHost string) DocumentRecord {
	return DocumentRecord{
		Number:        d.Number,
		NumberString:  d.NumberString(),
		Title:         d.Title,
		Name:          d.Name(),
		State:         string(d.State),
		Link:          d.Link,
		Discussion:    d.Discussion,
		Authors:       d.Authors,
		ContentKind:   contentExtension(d.Content.Kind),
		Content:       d.Content.Raw,
		HTML:          d.TruncatedHTML(),
		SHA:           d.SHA,
		CommitDate:    d.CommitDate,
		ShortLink:     d.ShortLink(shortURLHost),
		RenderedLink:  d.RenderedLink(renderedLinkHost),
		PDFLinkSource: d.PDFLinkSource,
		PDFLinkDrive:  d.PDFLinkDrive,
		PDFFilename:   d.PDFFilename(),
	}
}

// Store defines the persistence operations the reconciler and hook
// chain need.
//
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/oxidecomputer/rfd-pipeline/internal/storage Store
type Store interface {
	GetDocument(ctx context.Context, number int) (*DocumentRecord, error)
	UpsertDocument(ctx context.Context, record *DocumentRecord) error
	ListDocuments(ctx context.Context) ([]*DocumentRecord, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// GetDocument retrieves a document by its number. Returns ErrNotFound
// when absent, letting the reconciler treat "no previous record" as a
// normal, expected outcome (§4.5 step 3).
func (s *postgresStore) GetDocument(ctx context.Context, number int) (*DocumentRecord, error) {
	query := `
		SELECT number, number_string, title, name, state, link, discussion, authors,
		       content_kind, content, html, sha, commit_date, short_link, rendered_link,
		       pdf_link_source, pdf_link_drive, pdf_filename, created_at, updated_at
		FROM documents
		WHERE number = $1`

	var record DocumentRecord
	if err := s.db.GetContext(ctx, &record, query, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %d: %w", number, err)
	}
	return &record, nil
}

// UpsertDocument inserts or updates the document row, keyed by number.
func (s *postgresStore) UpsertDocument(ctx context.Context, record *DocumentRecord) error {
	query := `
		INSERT INTO documents (
			number, number_string, title, name, state, link, discussion, authors,
			content_kind, content, html, sha, commit_date, short_link, rendered_link,
			pdf_link_source, pdf_link_drive, pdf_filename, updated_at
		) VALUES (
			:number, :number_string, :title, :name, :state, :link, :discussion, :authors,
			:content_kind, :content, :html, :sha, :commit_date, :short_link, :rendered_link,
			:pdf_link_source, :pdf_link_drive, :pdf_filename, NOW()
		)
		ON CONFLICT (number) DO UPDATE SET
			number_string   = EXCLUDED.number_string,
			title           = EXCLUDED.title,
			name            = EXCLUDED.name,
			state           = EXCLUDED.state,
			link            = EXCLUDED.link,
			discussion      = EXCLUDED.discussion,
			authors         = EXCLUDED.authors,
			content_kind    = EXCLUDED.content_kind,
			content         = EXCLUDED.content,
			html            = EXCLUDED.html,
			sha             = EXCLUDED.sha,
			commit_date     = EXCLUDED.commit_date,
			short_link      = EXCLUDED.short_link,
			rendered_link   = EXCLUDED.rendered_link,
			pdf_link_source = EXCLUDED.pdf_link_source,
			pdf_link_drive  = EXCLUDED.pdf_link_drive,
			pdf_filename    = EXCLUDED.pdf_filename,
			updated_at      = NOW()
		RETURNING created_at, updated_at`

	rows, err := s.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			slog.ErrorContext(ctx, "postgres error during upsert document", "code", pqErr.Code, "message", pqErr.Message)
		}
		return fmt.Errorf("failed to upsert document %d: %w", record.Number, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&record.CreatedAt, &record.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan returned timestamps: %w", err)
		}
	}
	return rows.Err()
}

// ListDocuments returns every document, ordered by number, for
// GenerateShortUrls (§4.6 hook 3) and the status CLI command.
func (s *postgresStore) ListDocuments(ctx context.Context) ([]*DocumentRecord, error) {
	query := `
		SELECT number, number_string, title, name, state, link, discussion, authors,
		       content_kind, content, html, sha, commit_date, short_link, rendered_link,
		       pdf_link_source, pdf_link_drive, pdf_filename, created_at, updated_at
		FROM documents
		ORDER BY number ASC`

	var records []*DocumentRecord
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return records, nil
}
