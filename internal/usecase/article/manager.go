package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"article-management/internal/domain/entity"
	"article-management/internal/observability/logging"
	"article-management/internal/observability/metrics"
	"article-management/internal/observability/tracing"
	"article-management/internal/repository"
)

// DefaultQueryTimeout bounds ListArticles when Manager.QueryTimeout is zero.
const DefaultQueryTimeout = 60 * time.Second

// Manager implements the article use cases. It holds no mutable state: every
// call opens its own repository session, so one Manager may serve concurrent
// requests. Races on the same article are detected by the storage layer at
// commit time and reported as ErrPersistenceConflict; they are never retried.
//
// Article numbers outside 1..entity.MaxArticleNumber are rejected with
// ErrInvalidArticleNumber by CreateArticle and UpsertArticle. Every other
// operation reports them as ErrArticleNotFound.
type Manager struct {
	Store repository.ArticleStore
	// QueryTimeout bounds ListArticles. Zero means DefaultQueryTimeout.
	QueryTimeout time.Duration
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
	// Logger is used for commit failures and invariant violations. Nil means slog.Default().
	Logger *slog.Logger
}

// NewManager creates a Manager with default timeout and clock.
func NewManager(store repository.ArticleStore, logger *slog.Logger) *Manager {
	return &Manager{Store: store, Logger: logger}
}

// ArticleInput carries the caller-supplied fields of an article.
type ArticleInput struct {
	ArticleNumber int
	Brand         string
	IsBulky       bool
}

// AttributeInput carries a new attribute for one country.
type AttributeInput struct {
	Country entity.Country
	entity.AttributeFields
}

// ListInput holds the optional ListArticles filters. Nil fields are not applied.
type ListInput struct {
	ChangedFrom   *time.Time
	ChangedTo     *time.Time
	TitleContains *string
}

// ArticleOutput is the caller-visible view of an article.
type ArticleOutput struct {
	ArticleNumber int
	Brand         string
	IsBulky       bool
	IsApproved    bool
	LastChanged   time.Time
}

// AttributeOutput is the caller-visible view of an attribute.
type AttributeOutput struct {
	Country     entity.Country
	Title       string
	Description string
	Color       string
	LastChange  time.Time
}

// UpsertResult reports whether UpsertArticle created the article.
type UpsertResult struct {
	Created bool
	Article *ArticleOutput
}

// AttributeUpsertResult reports whether UpsertAttribute created the attribute.
type AttributeUpsertResult struct {
	Created   bool
	Attribute *AttributeOutput
}

// GetArticle returns the article with the given number.
func (m *Manager) GetArticle(ctx context.Context, articleNumber int) (out *ArticleOutput, err error) {
	ctx, done := m.observe(ctx, "get_article", attribute.Int("article.number", articleNumber))
	defer func() { done(err) }()

	a, err := m.load(ctx, m.Store.Session(), articleNumber)
	if err != nil {
		return nil, err
	}
	return toArticleOutput(a), nil
}

// ListArticles returns the articles changed within [ChangedFrom, ChangedTo]
// that have at least one attribute title containing TitleContains.
// The result is never nil. Exceeding the query timeout fails with ErrQueryTimeout.
func (m *Manager) ListArticles(ctx context.Context, in ListInput) (out []ArticleOutput, err error) {
	ctx, done := m.observe(ctx, "list_articles")
	defer func() { done(err) }()

	timeout := m.queryTimeout()
	filter := repository.ArticleFilter{
		ChangedFrom:   in.ChangedFrom,
		ChangedTo:     in.ChangedTo,
		TitleContains: in.TitleContains,
	}
	articles, err := m.Store.Session().Query(ctx, filter, timeout)
	if err != nil {
		if errors.Is(err, repository.ErrQueryTimeout) || errors.Is(err, context.DeadlineExceeded) {
			m.logger(ctx).Error("article query timed out", slog.Duration("timeout", timeout))
			return nil, fmt.Errorf("%w after %s", ErrQueryTimeout, timeout)
		}
		return nil, fmt.Errorf("query articles: %w", err)
	}

	out = make([]ArticleOutput, 0, len(articles))
	for _, a := range articles {
		out = append(out, *toArticleOutput(a))
	}
	return out, nil
}

// CreateArticle stores a new unapproved article without attributes.
// It fails with ErrArticleExists if the article number is taken.
func (m *Manager) CreateArticle(ctx context.Context, in ArticleInput) (out *ArticleOutput, err error) {
	ctx, done := m.observe(ctx, "create_article", attribute.Int("article.number", in.ArticleNumber))
	defer func() { done(err) }()

	if err := validateArticleInput(in); err != nil {
		return nil, err
	}

	sess := m.Store.Session()
	exists, err := sess.Exists(ctx, in.ArticleNumber)
	if err != nil {
		return nil, fmt.Errorf("check article %d: %w", in.ArticleNumber, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %d", ErrArticleExists, in.ArticleNumber)
	}

	a := entity.NewArticle(in.ArticleNumber, in.Brand, in.IsBulky, m.now())
	sess.Add(a)
	if err := m.commit(ctx, sess, in.ArticleNumber); err != nil {
		return nil, err
	}
	return toArticleOutput(a), nil
}

// UpsertArticle updates brand and bulkiness of an existing article, leaving its
// attributes and approval untouched, or creates the article if it does not exist.
func (m *Manager) UpsertArticle(ctx context.Context, in ArticleInput) (res *UpsertResult, err error) {
	ctx, done := m.observe(ctx, "upsert_article", attribute.Int("article.number", in.ArticleNumber))
	defer func() { done(err) }()

	if err := validateArticleInput(in); err != nil {
		return nil, err
	}

	sess := m.Store.Session()
	a, err := sess.Get(ctx, in.ArticleNumber)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", in.ArticleNumber, err)
	}

	created := a == nil
	if created {
		a = entity.NewArticle(in.ArticleNumber, in.Brand, in.IsBulky, m.now())
		sess.Add(a)
	} else {
		a.Update(in.Brand, in.IsBulky, m.now())
	}
	if err := m.commit(ctx, sess, in.ArticleNumber); err != nil {
		return nil, err
	}
	return &UpsertResult{Created: created, Article: toArticleOutput(a)}, nil
}

// DeleteArticle removes an article together with all its attributes.
func (m *Manager) DeleteArticle(ctx context.Context, articleNumber int) (err error) {
	ctx, done := m.observe(ctx, "delete_article", attribute.Int("article.number", articleNumber))
	defer func() { done(err) }()

	sess := m.Store.Session()
	a, err := m.load(ctx, sess, articleNumber)
	if err != nil {
		return err
	}
	sess.Remove(a)
	return m.commit(ctx, sess, articleNumber)
}

// ListAttributes returns every attribute of an article. The result is never nil.
func (m *Manager) ListAttributes(ctx context.Context, articleNumber int) (out []AttributeOutput, err error) {
	ctx, done := m.observe(ctx, "list_attributes", attribute.Int("article.number", articleNumber))
	defer func() { done(err) }()

	a, err := m.load(ctx, m.Store.Session(), articleNumber)
	if err != nil {
		return nil, err
	}
	out = make([]AttributeOutput, 0, len(a.Attributes))
	for _, attr := range a.Attributes {
		out = append(out, *toAttributeOutput(attr))
	}
	return out, nil
}

// GetAttribute returns the attribute of an article for one country.
func (m *Manager) GetAttribute(ctx context.Context, articleNumber int, country entity.Country) (out *AttributeOutput, err error) {
	ctx, done := m.observe(ctx, "get_attribute",
		attribute.Int("article.number", articleNumber),
		attribute.String("article.country", country.String()),
	)
	defer func() { done(err) }()

	if err := entity.ValidateCountry(country); err != nil {
		return nil, err
	}

	a, err := m.load(ctx, m.Store.Session(), articleNumber)
	if err != nil {
		return nil, err
	}
	attr, err := m.single(ctx, a, country)
	if err != nil {
		return nil, err
	}
	if attr == nil {
		return nil, fmt.Errorf("%w: article %d, country %s", ErrAttributeNotFound, articleNumber, country)
	}
	return toAttributeOutput(attr), nil
}

// AddAttribute adds the attribute for a country the article has none for.
// It fails with ErrAttributeExists otherwise.
func (m *Manager) AddAttribute(ctx context.Context, articleNumber int, in AttributeInput) (out *AttributeOutput, err error) {
	ctx, done := m.observe(ctx, "add_attribute",
		attribute.Int("article.number", articleNumber),
		attribute.String("article.country", in.Country.String()),
	)
	defer func() { done(err) }()

	if err := validateAttribute(in.Country, in.AttributeFields); err != nil {
		return nil, err
	}

	sess := m.Store.Session()
	a, err := m.load(ctx, sess, articleNumber)
	if err != nil {
		return nil, err
	}
	if len(a.AttributesFor(in.Country)) > 0 {
		return nil, fmt.Errorf("%w: article %d, country %s", ErrAttributeExists, articleNumber, in.Country)
	}

	attr := a.AddAttribute(in.Country, in.AttributeFields, m.now())
	if err := m.commit(ctx, sess, articleNumber); err != nil {
		return nil, err
	}
	return toAttributeOutput(attr), nil
}

// UpsertAttribute updates the attribute for a country, or creates it when the
// article has none.
func (m *Manager) UpsertAttribute(ctx context.Context, articleNumber int, country entity.Country, fields entity.AttributeFields) (res *AttributeUpsertResult, err error) {
	ctx, done := m.observe(ctx, "upsert_attribute",
		attribute.Int("article.number", articleNumber),
		attribute.String("article.country", country.String()),
	)
	defer func() { done(err) }()

	if err := validateAttribute(country, fields); err != nil {
		return nil, err
	}

	sess := m.Store.Session()
	a, err := m.load(ctx, sess, articleNumber)
	if err != nil {
		return nil, err
	}
	attr, err := m.single(ctx, a, country)
	if err != nil {
		return nil, err
	}

	created := attr == nil
	if created {
		attr = a.AddAttribute(country, fields, m.now())
	} else {
		a.UpdateAttribute(attr, fields, m.now())
	}
	if err := m.commit(ctx, sess, articleNumber); err != nil {
		return nil, err
	}
	return &AttributeUpsertResult{Created: created, Attribute: toAttributeOutput(attr)}, nil
}

// DeleteAttribute removes the attribute of an article for one country.
func (m *Manager) DeleteAttribute(ctx context.Context, articleNumber int, country entity.Country) (err error) {
	ctx, done := m.observe(ctx, "delete_attribute",
		attribute.Int("article.number", articleNumber),
		attribute.String("article.country", country.String()),
	)
	defer func() { done(err) }()

	if err := entity.ValidateCountry(country); err != nil {
		return err
	}

	sess := m.Store.Session()
	a, err := m.load(ctx, sess, articleNumber)
	if err != nil {
		return err
	}
	attr, err := m.single(ctx, a, country)
	if err != nil {
		return err
	}
	if attr == nil {
		return fmt.Errorf("%w: article %d, country %s", ErrAttributeNotFound, articleNumber, country)
	}
	a.RemoveAttribute(attr, m.now())
	return m.commit(ctx, sess, articleNumber)
}

// load fetches a tracked article or fails with ErrArticleNotFound. A number
// outside the valid range names no article, so storage is not asked.
func (m *Manager) load(ctx context.Context, sess repository.ArticleRepository, articleNumber int) (*entity.Article, error) {
	if entity.ValidateArticleNumber(articleNumber) != nil {
		return nil, fmt.Errorf("%w: %d", ErrArticleNotFound, articleNumber)
	}
	a, err := sess.Get(ctx, articleNumber)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", articleNumber, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %d", ErrArticleNotFound, articleNumber)
	}
	return a, nil
}

// single returns the only attribute of a for country, or nil if there is none.
// More than one match is reported as ErrInvariantViolation, never resolved.
func (m *Manager) single(ctx context.Context, a *entity.Article, country entity.Country) (*entity.Attribute, error) {
	matches := a.AttributesFor(country)
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}
	metrics.RecordInvariantViolation()
	m.logger(ctx).Error("multiple attributes for one country",
		slog.Int("article_number", a.ArticleNumber),
		slog.String("country", country.String()),
		slog.Int("count", len(matches)),
	)
	return nil, fmt.Errorf("%w: article %d has %d attributes for country %s",
		ErrInvariantViolation, a.ArticleNumber, len(matches), country)
}

// commit flushes the session and maps storage failures onto the two
// persistence error kinds.
func (m *Manager) commit(ctx context.Context, sess repository.ArticleRepository, articleNumber int) error {
	logger := m.logger(ctx).With(slog.Int("article_number", articleNumber))

	n, err := sess.SaveChanges(ctx)
	if err == nil {
		metrics.RecordCommit(metrics.CommitSuccess)
		logger.Debug("changes saved", slog.Int("rows", n))
		return nil
	}
	if errors.Is(err, repository.ErrConcurrencyConflict) {
		metrics.RecordCommit(metrics.CommitConflict)
		logger.Warn("concurrent modification on save", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrPersistenceConflict, err)
	}
	metrics.RecordCommit(metrics.CommitError)
	logger.Error("failed to save changes", slog.Any("error", err))
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// observe starts a span for op and returns a function that ends it and
// records the operation metrics for the final error.
func (m *Manager) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "article."+op, attrs...)
	return ctx, func(err error) {
		kind := KindOf(err)
		metrics.RecordArticleOperation(op, kind.String(), time.Since(start))
		if kind.ServerFault() {
			span.RecordError(err)
			span.SetStatus(codes.Error, kind.String())
		}
		span.End()
	}
}

func (m *Manager) now() time.Time {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	// Microsecond precision survives every storage backend unchanged.
	return now().UTC().Truncate(time.Microsecond)
}

func (m *Manager) queryTimeout() time.Duration {
	if m.QueryTimeout > 0 {
		return m.QueryTimeout
	}
	return DefaultQueryTimeout
}

func (m *Manager) logger(ctx context.Context) *slog.Logger {
	base := m.Logger
	if base == nil {
		base = slog.Default()
	}
	return logging.WithRequestID(ctx, base)
}

func validateArticleInput(in ArticleInput) error {
	if err := entity.ValidateArticleNumber(in.ArticleNumber); err != nil {
		return fmt.Errorf("%w %d: %w", ErrInvalidArticleNumber, in.ArticleNumber, err)
	}
	return entity.ValidateBrand(in.Brand)
}

func validateAttribute(country entity.Country, fields entity.AttributeFields) error {
	if err := entity.ValidateCountry(country); err != nil {
		return err
	}
	return entity.ValidateAttributeFields(fields)
}

func toArticleOutput(a *entity.Article) *ArticleOutput {
	return &ArticleOutput{
		ArticleNumber: a.ArticleNumber,
		Brand:         a.Brand,
		IsBulky:       a.IsBulky,
		IsApproved:    a.IsApproved,
		LastChanged:   a.LastChanged,
	}
}

func toAttributeOutput(attr *entity.Attribute) *AttributeOutput {
	return &AttributeOutput{
		Country:     attr.Country,
		Title:       attr.Title,
		Description: attr.Description,
		Color:       attr.Color,
		LastChange:  attr.LastChange,
	}
}
