package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jordan/portfolio-studio/internal/slugs"
	"github.com/jordan/portfolio-studio/internal/types"
)

const uniqueViolation = "23505"

const portfolioColumns = `slug, custom_domain, document, template_id, theme_id,
	color_mode, primary_color, hidden_sections, is_published, view_count, created_at`

func scanPortfolio(row pgx.Row) (types.PortfolioRecord, error) {
	var r portfolioRow
	err := row.Scan(&r.Slug, &r.CustomDomain, &r.Document, &r.TemplateID, &r.ThemeID,
		&r.ColorMode, &r.PrimaryColor, &r.HiddenSections, &r.IsPublished, &r.ViewCount, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.PortfolioRecord{}, ErrNotFound
		}
		return types.PortfolioRecord{}, fmt.Errorf("failed to scan portfolio: %w", err)
	}
	return r.toRecord()
}

// GetByUser loads a user's portfolio. Returns ErrNotFound when the user has
// never uploaded a resume.
func (db *DB) GetByUser(ctx context.Context, userID uuid.UUID) (types.PortfolioRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE user_id = $1`, userID)
	return scanPortfolio(row)
}

// CreateFromParse stores a freshly parsed document for the user. A first
// upload creates the row with a generated slug and default presentation; a
// re-upload replaces the document but keeps the slug, presentation settings,
// and publication state.
func (db *DB) CreateFromParse(ctx context.Context, userID uuid.UUID, doc types.ProfileDocument) (types.PortfolioRecord, error) {
	raw, err := encodeDocument(doc)
	if err != nil {
		return types.PortfolioRecord{}, err
	}

	slug := slugs.Generate(doc.Name, userID)
	row := db.pool.QueryRow(ctx, `
		INSERT INTO portfolios (user_id, slug, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
		RETURNING `+portfolioColumns,
		userID, slug, raw)

	rec, err := scanPortfolio(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Generated slug collided with another user's. Retry once with a
			// fresh random suffix.
			row = db.pool.QueryRow(ctx, `
				INSERT INTO portfolios (user_id, slug, document)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
				RETURNING `+portfolioColumns,
				userID, slugs.Generate(doc.Name, uuid.New()), raw)
			return scanPortfolio(row)
		}
		return types.PortfolioRecord{}, err
	}
	return rec, nil
}

// SaveDraft persists the full draft for the user: document plus presentation
// settings in one statement, so a partial draft never lands.
func (db *DB) SaveDraft(ctx context.Context, userID uuid.UUID, doc types.ProfileDocument, pres types.PresentationSettings) error {
	raw, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	tag, err := db.pool.Exec(ctx, `
		UPDATE portfolios
		SET document = $2, template_id = $3, theme_id = $4, color_mode = $5,
		    primary_color = $6, hidden_sections = $7, updated_at = NOW()
		WHERE user_id = $1`,
		userID, raw, pres.TemplateID, pres.ThemeID, pres.ColorMode,
		pres.PrimaryColor, encodeHidden(pres.HiddenSections))
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished toggles the publication flag and returns the value the
// database actually holds afterwards.
func (db *DB) SetPublished(ctx context.Context, userID uuid.UUID, published bool) (bool, error) {
	row := db.pool.QueryRow(ctx, `
		UPDATE portfolios SET is_published = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING is_published`,
		userID, published)

	var result bool
	if err := row.Scan(&result); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to set published: %w", err)
	}
	return result, nil
}

// CheckSlug reports whether a candidate slug is free. Concurrent checks for
// the same candidate share one query.
func (db *DB) CheckSlug(ctx context.Context, userID uuid.UUID, slug string) (slugs.Availability, error) {
	v, err, _ := db.slugChecks.Do(userID.String()+"/"+slug, func() (any, error) {
		var owner uuid.UUID
		err := db.pool.QueryRow(ctx,
			`SELECT user_id FROM portfolios WHERE slug = $1`, slug).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return slugs.Availability{Available: true}, nil
		}
		if err != nil {
			return slugs.Availability{}, fmt.Errorf("failed to check slug: %w", err)
		}
		if owner == userID {
			return slugs.Availability{Available: true, Reason: "already yours"}, nil
		}
		return slugs.Availability{Available: false, Reason: "slug is taken"}, nil
	})
	if err != nil {
		return slugs.Availability{}, err
	}
	return v.(slugs.Availability), nil
}

// CommitSlug assigns a new slug to the user's portfolio. A unique violation
// maps to slugs.ErrConflict so the caller can distinguish a race from a
// transient failure.
func (db *DB) CommitSlug(ctx context.Context, userID uuid.UUID, slug string) error {
	tag, err := db.pool.Exec(ctx, `
		UPDATE portfolios SET slug = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, slug)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &slugs.ErrConflict{Slug: slug}
		}
		return fmt.Errorf("failed to commit slug: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPublished loads a published portfolio by slug and increments its view
// counter in the same statement. Unpublished portfolios are not found.
func (db *DB) GetPublished(ctx context.Context, slug string) (types.PortfolioRecord, error) {
	row := db.pool.QueryRow(ctx, `
		UPDATE portfolios SET view_count = view_count + 1
		WHERE slug = $1 AND is_published = true
		RETURNING `+portfolioColumns,
		slug)
	return scanPortfolio(row)
}

// GetBySlug loads a published portfolio by slug without touching the view
// counter. Export renders use this so exporting a page never counts as a
// visit.
func (db *DB) GetBySlug(ctx context.Context, slug string) (types.PortfolioRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE slug = $1 AND is_published = true`,
		slug)
	return scanPortfolio(row)
}

// GetByDomain loads a published portfolio by its verified custom domain,
// incrementing the view counter.
func (db *DB) GetByDomain(ctx context.Context, domain string) (types.PortfolioRecord, error) {
	row := db.pool.QueryRow(ctx, `
		UPDATE portfolios SET view_count = view_count + 1
		WHERE custom_domain = $1 AND is_published = true
		RETURNING `+portfolioColumns,
		domain)
	return scanPortfolio(row)
}
