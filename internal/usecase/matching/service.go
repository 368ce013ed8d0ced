// Package matching provides the two domain conveniences built purely on the
// query engine: profile-to-profile similarity and role-to-talent matching.
// It holds no state of its own; both operations reduce to one embed call and
// one query call.
package matching

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentgrid/matchengine/internal/domain/match"
	"github.com/talentgrid/matchengine/internal/domain/metadata"
	"github.com/talentgrid/matchengine/internal/domain/record"
)

// Service composes the embedder and query engine into talent-matching calls.
type Service struct {
	queries Querier
	idx     Upserter
	embed   Embedder
	logger  *zap.Logger
}

// New creates a matching service.
func New(queries Querier, idx Upserter, embed Embedder, logger *zap.Logger) *Service {
	return &Service{queries: queries, idx: idx, embed: embed, logger: logger}
}

// UpsertProfile embeds a profile text and stores the resulting vector with
// its metadata. This is the single-item text write path: text, provider,
// vector, index.
func (s *Service) UpsertProfile(
	ctx context.Context, id, profileText string, meta metadata.Metadata,
) error {
	res, err := s.embed.Embed(ctx, profileText)
	if err != nil {
		return fmt.Errorf("vectorize profile: %w", err)
	}

	rec, err := record.New(id, res.Embedding, meta)
	if err != nil {
		return fmt.Errorf("build record: %w", err)
	}

	if err := s.idx.Upsert(rec); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// FindSimilar embeds a profile text and returns the most similar stored
// profiles, optionally restricted by a metadata filter.
func (s *Service) FindSimilar(
	ctx context.Context, profileText string, filter metadata.Filter, limit int,
) ([]match.Result, error) {
	res, err := s.embed.Embed(ctx, profileText)
	if err != nil {
		return nil, fmt.Errorf("vectorize profile: %w", err)
	}

	results, err := s.queries.Query(ctx, res.Embedding, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("similar query: %w", err)
	}
	return results, nil
}

// MatchToRole composes a role description with its desired traits into one
// query string, embeds it once, and returns the best-matching profiles. The
// result score is the match score of a profile against the role.
func (s *Service) MatchToRole(
	ctx context.Context, roleDescription string, traits []string, limit int,
) ([]match.Result, error) {
	text := composeRoleText(roleDescription, traits)

	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize role: %w", err)
	}

	results, err := s.queries.Query(ctx, res.Embedding, limit, metadata.Filter{})
	if err != nil {
		return nil, fmt.Errorf("role query: %w", err)
	}

	s.logger.Debug("Role match completed",
		zap.Int("traits", len(traits)),
		zap.Int("limit", limit),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// composeRoleText joins the role description with its trait list. Traits are
// appended as one clause so the embedder sees a single coherent query.
func composeRoleText(roleDescription string, traits []string) string {
	if len(traits) == 0 {
		return roleDescription
	}
	return roleDescription + "\nDesired traits: " + strings.Join(traits, ", ")
}
