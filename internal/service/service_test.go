package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/minhvu/catalogue/internal/model"
	"github.com/minhvu/catalogue/internal/repository"
	"github.com/minhvu/catalogue/internal/storage/db"
)

// fakeDB satisfies db.DB for services under test. The repositories are
// stubbed out, so only WithTx is ever reached; it runs the function
// against itself like an already-open transaction would.
type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("unexpected Exec on fake db")
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("unexpected Query on fake db")
}

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("unexpected QueryRow on fake db")
}

func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type stubProductRepo struct {
	createProduct     func(ctx context.Context, product model.Product) error
	getProduct        func(ctx context.Context, id uuid.UUID) (model.Product, error)
	getProductHeader  func(ctx context.Context, id uuid.UUID) (model.Product, *string, error)
	listProducts      func(ctx context.Context, filter repository.ListProductsFilter) ([]model.ProductSummary, error)
	updateProduct     func(ctx context.Context, id uuid.UUID, params repository.UpdateProductParams, now time.Time) error
	softDeleteProduct func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	lockProduct       func(ctx context.Context, id uuid.UUID) error
}

func (s *stubProductRepo) WithDB(db.DB) repository.ProductRepository { return s }

func (s *stubProductRepo) CreateProduct(ctx context.Context, product model.Product) error {
	return s.createProduct(ctx, product)
}

func (s *stubProductRepo) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return s.getProduct(ctx, id)
}

func (s *stubProductRepo) GetProductHeader(ctx context.Context, id uuid.UUID) (model.Product, *string, error) {
	return s.getProductHeader(ctx, id)
}

func (s *stubProductRepo) ListProducts(ctx context.Context, filter repository.ListProductsFilter) ([]model.ProductSummary, error) {
	return s.listProducts(ctx, filter)
}

func (s *stubProductRepo) UpdateProduct(ctx context.Context, id uuid.UUID, params repository.UpdateProductParams, now time.Time) error {
	return s.updateProduct(ctx, id, params, now)
}

func (s *stubProductRepo) SoftDeleteProduct(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	return s.softDeleteProduct(ctx, id, now)
}

func (s *stubProductRepo) LockProduct(ctx context.Context, id uuid.UUID) error {
	return s.lockProduct(ctx, id)
}

type stubVariantRepo struct {
	createVariant          func(ctx context.Context, variant model.Variant) error
	getVariant             func(ctx context.Context, id uuid.UUID) (model.Variant, error)
	listVariantsByProduct  func(ctx context.Context, productID uuid.UUID) ([]model.Variant, error)
	updateVariant          func(ctx context.Context, id uuid.UUID, params repository.UpdateVariantParams, now time.Time) error
	deleteVariant          func(ctx context.Context, id uuid.UUID) error
	skuInUse               func(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error)
	countVariantsByProduct func(ctx context.Context, productID uuid.UUID) (int64, error)
}

func (s *stubVariantRepo) WithDB(db.DB) repository.VariantRepository { return s }

func (s *stubVariantRepo) CreateVariant(ctx context.Context, variant model.Variant) error {
	return s.createVariant(ctx, variant)
}

func (s *stubVariantRepo) GetVariant(ctx context.Context, id uuid.UUID) (model.Variant, error) {
	return s.getVariant(ctx, id)
}

func (s *stubVariantRepo) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]model.Variant, error) {
	return s.listVariantsByProduct(ctx, productID)
}

func (s *stubVariantRepo) UpdateVariant(ctx context.Context, id uuid.UUID, params repository.UpdateVariantParams, now time.Time) error {
	return s.updateVariant(ctx, id, params, now)
}

func (s *stubVariantRepo) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return s.deleteVariant(ctx, id)
}

func (s *stubVariantRepo) SkuInUse(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	return s.skuInUse(ctx, sku, excludeID)
}

func (s *stubVariantRepo) CountVariantsByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	return s.countVariantsByProduct(ctx, productID)
}

type stubCategoryRepo struct {
	listCategories func(ctx context.Context) ([]model.CategorySummary, error)
	getCategory    func(ctx context.Context, id uuid.UUID) (model.Category, error)
}

func (s *stubCategoryRepo) WithDB(db.DB) repository.CategoryRepository { return s }

func (s *stubCategoryRepo) ListCategories(ctx context.Context) ([]model.CategorySummary, error) {
	return s.listCategories(ctx)
}

func (s *stubCategoryRepo) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	return s.getCategory(ctx, id)
}

// recordingOutboxRepo collects every message written through it.
type recordingOutboxRepo struct {
	msgs []repository.CreateOutboxMsgParams
}

func (s *recordingOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return s }

func (s *recordingOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	s.msgs = append(s.msgs, params)
	return nil
}

func (s *recordingOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (s *recordingOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (s *recordingOutboxRepo) payloadOf(topic string, out any) bool {
	for _, m := range s.msgs {
		if m.Topic == topic {
			if err := json.Unmarshal(m.Payload, out); err != nil {
				panic(err)
			}
			return true
		}
	}
	return false
}
