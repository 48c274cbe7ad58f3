package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/rhm-kanzlei/mailroom/pkg/pagination"
	"github.com/rhm-kanzlei/mailroom/pkg/query"
	"github.com/rhm-kanzlei/mailroom/pkg/repository"
)

const ruleColumns = `id, owner, sender, category, keywords, target_folder,
		confidence, times_applied, created_at, updated_at`

// cacheTTL bounds rule staleness for readers that never trigger a mutation.
const cacheTTL = 5 * time.Minute

type repo struct {
	db         *sql.DB
	cache      *gocache.Cache
	thresholds Thresholds
	categories CategoryTable
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a rules repository implementing the System interface. Rule
// reads are served from a per-owner cache invalidated on every mutation.
func New(
	db *sql.DB,
	thresholds Thresholds,
	categories CategoryTable,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		thresholds: thresholds,
		categories: categories,
		logger:     logger.With("system", "rules"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Rule], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Sender", "TargetFolder", "Category")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count rules: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRule)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Rule, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rule, err := repository.QueryOne(ctx, r.db, q, args, scanRule)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rule, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	rule, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM classification_rules WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cache.Delete(rule.Owner)
	r.logger.Info("rule deleted", "id", id, "owner", rule.Owner)
	return nil
}

func (r *repo) Classify(ctx context.Context, owner string, profile DocumentProfile) (*Classification, error) {
	rules, err := r.rulesFor(ctx, owner)
	if err != nil {
		return nil, err
	}

	category := r.categories.ResolveCategory(profile)

	if best, bestScore := bestRule(rules, profile); best != nil && bestScore > r.thresholds.Accept {
		id := best.ID
		return &Classification{
			Folder:     best.TargetFolder,
			Category:   category,
			Confidence: bestScore,
			RuleID:     &id,
		}, nil
	}

	return &Classification{
		Folder:     r.categories.FallbackFolder(category),
		Category:   category,
		Confidence: r.thresholds.Fallback,
	}, nil
}

func (r *repo) Suggest(ctx context.Context, owner string, profile DocumentProfile, n int) ([]Suggestion, error) {
	rules, err := r.rulesFor(ctx, owner)
	if err != nil {
		return nil, err
	}

	ranked := rankRules(rules, profile, r.thresholds.Display)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (r *repo) Learn(ctx context.Context, owner string, profile DocumentProfile, targetFolder string) (*Rule, error) {
	rule, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Rule, error) {
		return r.LearnIn(ctx, tx, owner, profile, targetFolder)
	})
	if err != nil {
		return nil, err
	}

	r.cache.Delete(owner)
	return rule, nil
}

// Invalidate drops an owner's cached rule set. Callers running LearnIn inside
// their own transaction invoke it after the commit, never before, so readers
// cannot re-cache a pre-commit snapshot.
func (r *repo) Invalidate(owner string) {
	r.cache.Delete(owner)
}

// LearnIn applies one correction within the caller's transaction. The matching
// rule row is locked for the duration so racing corrections serialize instead
// of losing updates. When two corrections race on a pair that has no rule yet,
// the loser's insert is suppressed by the unique (owner, sender, target_folder)
// index and retried as a strengthen of the winner's row.
func (r *repo) LearnIn(ctx context.Context, tx *sql.Tx, owner string, profile DocumentProfile, targetFolder string) (*Rule, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}

	keywords := extractKeywords(profile.Subject, r.thresholds.MaxKeywords)
	category := r.categories.MatchCategory(profile)

	existing, err := r.lockRule(ctx, tx, owner, profile.Sender, targetFolder)
	switch {
	case err == nil:
		return r.strengthen(ctx, tx, existing, keywords)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("lock rule: %w", err)
	}

	created, err := r.create(ctx, tx, owner, profile.Sender, category, keywords, targetFolder)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Insert race lost: the winning row is committed by now and lockable.
	existing, err = r.lockRule(ctx, tx, owner, profile.Sender, targetFolder)
	if err != nil {
		return nil, fmt.Errorf("lock rule after insert race: %w", err)
	}
	return r.strengthen(ctx, tx, existing, keywords)
}

func (r *repo) lockRule(ctx context.Context, tx *sql.Tx, owner, sender, targetFolder string) (Rule, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM classification_rules
		WHERE owner = $1 AND sender = $2 AND target_folder = $3
		FOR UPDATE`, ruleColumns)

	return repository.QueryOne(ctx, tx, q, []any{owner, sender, targetFolder}, scanRule)
}

func (r *repo) strengthen(ctx context.Context, tx *sql.Tx, rule Rule, keywords []string) (*Rule, error) {
	merged := unionKeywords(rule.Keywords, keywords)
	keywordsJSON, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE classification_rules
		SET times_applied = times_applied + 1,
			confidence = LEAST($1, confidence + $2),
			keywords = $3,
			updated_at = NOW()
		WHERE id = $4
		RETURNING %s`, ruleColumns)

	updated, err := repository.QueryOne(ctx, tx, q,
		[]any{r.thresholds.Cap, r.thresholds.Step, keywordsJSON, rule.ID},
		scanRule,
	)
	if err != nil {
		return nil, fmt.Errorf("strengthen rule: %w", err)
	}

	r.logger.Info("rule strengthened",
		"id", updated.ID,
		"owner", updated.Owner,
		"confidence", updated.Confidence,
		"times_applied", updated.TimesApplied,
	)
	return &updated, nil
}

func (r *repo) create(
	ctx context.Context,
	tx *sql.Tx,
	owner, sender, category string,
	keywords []string,
	targetFolder string,
) (*Rule, error) {
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO classification_rules(
			owner, sender, category, keywords, target_folder,
			confidence, times_applied
		)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		ON CONFLICT (owner, sender, target_folder) DO NOTHING
		RETURNING %s`, ruleColumns)

	created, err := repository.QueryOne(ctx, tx, q,
		[]any{owner, sender, category, keywordsJSON, targetFolder, r.thresholds.Initial},
		scanRule,
	)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	r.logger.Info("rule learned",
		"id", created.ID,
		"owner", created.Owner,
		"target_folder", created.TargetFolder,
	)
	return &created, nil
}

// rulesFor loads an owner's rules by descending confidence, through the cache.
func (r *repo) rulesFor(ctx context.Context, owner string) ([]Rule, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}

	if cached, ok := r.cache.Get(owner); ok {
		return cached.([]Rule), nil
	}

	q := fmt.Sprintf(`
		SELECT %s FROM classification_rules
		WHERE owner = $1
		ORDER BY confidence DESC`, ruleColumns)

	rules, err := repository.QueryMany(ctx, r.db, q, []any{owner}, scanRule)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	r.cache.SetDefault(owner, rules)
	return rules, nil
}
