package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schemakit/schemakit/pkg/schemakit"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements schemakit.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL repository on an existing connection or
// transaction. Aggregate saves run statement-by-statement; pass a transaction
// when atomicity is required.
func New(db DBTX) schemakit.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with a connection pool.
// Aggregate saves run inside a transaction.
func NewWithPool(pool *pgxpool.Pool) schemakit.Repository {
	return &Repository{db: pool, pool: pool}
}

// withTx runs fn inside a transaction when a pool is available, otherwise on
// the supplied connection.
func (r *Repository) withTx(ctx context.Context, fn func(db DBTX) error) error {
	if r.pool == nil {
		return fn(r.db)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "schema") {
				return fmt.Errorf("schema already exists")
			}
			if strings.Contains(pgErr.ConstraintName, "item") {
				return fmt.Errorf("item already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// staleOrMissing resolves a zero-row token-guarded update: the row either
// never existed or carries a newer token.
func (r *Repository) staleOrMissing(ctx context.Context, db DBTX, table string, id uuid.UUID, notFound error) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return notFound
	}
	return schemakit.ErrConcurrentModification
}

// Schema operations

func (r *Repository) CreateSchema(ctx context.Context, schema *schemakit.Schema) error {
	return r.withTx(ctx, func(db DBTX) error {
		query := `
			INSERT INTO schemas (
				id, name, system_name, description, icon, color, status,
				is_system, schema_version, allows_hierarchy, is_relational,
				configuration, concurrency_token, created_by, updated_by,
				created_at, updated_at, deleted_at, deleted_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

		_, err := db.Exec(ctx, query,
			schema.ID, schema.Name, schema.SystemName, schema.Description,
			schema.Icon, schema.Color, schema.Status, schema.IsSystem,
			schema.SchemaVersion, schema.AllowsHierarchy, schema.IsRelational,
			schema.Configuration, schema.ConcurrencyToken, schema.CreatedBy,
			schema.UpdatedBy, schema.CreatedAt, schema.UpdatedAt,
			schema.DeletedAt, schema.DeletedBy)
		if err != nil {
			return r.handlePostgresError("create schema", err)
		}
		if err := r.insertFields(ctx, db, schema); err != nil {
			return err
		}
		if err := r.insertRelations(ctx, db, schema); err != nil {
			return err
		}
		return r.insertAudit(ctx, db, "schema_audit", "schema_id", schema.ID, schema.History)
	})
}

func (r *Repository) GetSchema(ctx context.Context, id uuid.UUID) (*schemakit.Schema, error) {
	return r.getSchema(ctx, `WHERE id = $1`, id)
}

func (r *Repository) GetSchemaBySystemName(ctx context.Context, systemName string) (*schemakit.Schema, error) {
	return r.getSchema(ctx, `WHERE system_name = $1`, systemName)
}

func (r *Repository) getSchema(ctx context.Context, where string, arg interface{}) (*schemakit.Schema, error) {
	query := `
        SELECT id, name, system_name, description, icon, color, status,
               is_system, schema_version, allows_hierarchy, is_relational,
               configuration, concurrency_token, created_by, updated_by,
               created_at, updated_at, deleted_at, deleted_by
        FROM schemas ` + where

	var schema schemakit.Schema
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&schema.ID, &schema.Name, &schema.SystemName, &schema.Description,
		&schema.Icon, &schema.Color, &schema.Status, &schema.IsSystem,
		&schema.SchemaVersion, &schema.AllowsHierarchy, &schema.IsRelational,
		&schema.Configuration, &schema.ConcurrencyToken, &schema.CreatedBy,
		&schema.UpdatedBy, &schema.CreatedAt, &schema.UpdatedAt,
		&schema.DeletedAt, &schema.DeletedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schemakit.ErrSchemaNotFound
		}
		return nil, err
	}

	if schema.Fields, err = r.loadFields(ctx, schema.ID); err != nil {
		return nil, err
	}
	if schema.Relations, err = r.loadRelations(ctx, schema.ID); err != nil {
		return nil, err
	}
	if schema.History, err = r.loadAudit(ctx, "schema_audit", "schema_id", schema.ID); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (r *Repository) SaveSchema(ctx context.Context, schema *schemakit.Schema) error {
	return r.withTx(ctx, func(db DBTX) error {
		// The token predicate rejects writes against a row modified since
		// this aggregate was loaded.
		query := `
			UPDATE schemas SET
				name = $2, system_name = $3, description = $4, icon = $5,
				color = $6, status = $7, schema_version = $8,
				allows_hierarchy = $9, is_relational = $10, configuration = $11,
				updated_by = $12, updated_at = $13, deleted_at = $14, deleted_by = $15,
				concurrency_token = concurrency_token + 1
			WHERE id = $1 AND concurrency_token = $16`

		tag, err := db.Exec(ctx, query,
			schema.ID, schema.Name, schema.SystemName, schema.Description,
			schema.Icon, schema.Color, schema.Status, schema.SchemaVersion,
			schema.AllowsHierarchy, schema.IsRelational, schema.Configuration,
			schema.UpdatedBy, schema.UpdatedAt, schema.DeletedAt, schema.DeletedBy,
			schema.ConcurrencyToken)
		if err != nil {
			return r.handlePostgresError("save schema", err)
		}
		if tag.RowsAffected() == 0 {
			return r.staleOrMissing(ctx, db, "schemas", schema.ID, schemakit.ErrSchemaNotFound)
		}
		schema.ConcurrencyToken++

		// Owned collections are replaced whole; history is append-only.
		if _, err := db.Exec(ctx, `DELETE FROM schema_fields WHERE schema_id = $1`, schema.ID); err != nil {
			return r.handlePostgresError("save schema fields", err)
		}
		if err := r.insertFields(ctx, db, schema); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, `DELETE FROM schema_relations WHERE source_schema_id = $1`, schema.ID); err != nil {
			return r.handlePostgresError("save schema relations", err)
		}
		if err := r.insertRelations(ctx, db, schema); err != nil {
			return err
		}
		return r.insertAudit(ctx, db, "schema_audit", "schema_id", schema.ID, schema.History)
	})
}

func (r *Repository) ListSchemas(ctx context.Context, params schemakit.ListSchemasParams) ([]*schemakit.Schema, error) {
	query := `
        SELECT id FROM schemas WHERE 1=1`
	var args []interface{}
	if !params.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY system_name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schemas := make([]*schemakit.Schema, 0, len(ids))
	for _, id := range ids {
		schema, err := r.GetSchema(ctx, id)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, schema)
	}
	return schemas, nil
}

func (r *Repository) insertFields(ctx context.Context, db DBTX, schema *schemakit.Schema) error {
	query := `
		INSERT INTO schema_fields (
			id, schema_id, name, system_name, data_type, description,
			display_order, is_required, is_system, is_searchable, is_filterable,
			default_value, configuration, validation_rules, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	for _, f := range schema.Fields {
		_, err := db.Exec(ctx, query,
			f.ID, schema.ID, f.Name, f.SystemName, f.Type, f.Description,
			f.DisplayOrder, f.IsRequired, f.IsSystem, f.IsSearchable,
			f.IsFilterable, f.DefaultValue, f.Configuration, f.ValidationRules,
			f.CreatedAt, f.UpdatedAt)
		if err != nil {
			return r.handlePostgresError("insert field", err)
		}
	}
	return nil
}

func (r *Repository) loadFields(ctx context.Context, schemaID uuid.UUID) ([]*schemakit.Field, error) {
	query := `
        SELECT id, schema_id, name, system_name, data_type, description,
               display_order, is_required, is_system, is_searchable,
               is_filterable, default_value, configuration, validation_rules,
               created_at, updated_at
        FROM schema_fields WHERE schema_id = $1 ORDER BY display_order`

	rows, err := r.db.Query(ctx, query, schemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []*schemakit.Field
	for rows.Next() {
		var f schemakit.Field
		if err := rows.Scan(
			&f.ID, &f.SchemaID, &f.Name, &f.SystemName, &f.Type, &f.Description,
			&f.DisplayOrder, &f.IsRequired, &f.IsSystem, &f.IsSearchable,
			&f.IsFilterable, &f.DefaultValue, &f.Configuration, &f.ValidationRules,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		fields = append(fields, &f)
	}
	return fields, rows.Err()
}

func (r *Repository) insertRelations(ctx context.Context, db DBTX, schema *schemakit.Schema) error {
	query := `
		INSERT INTO schema_relations (
			id, source_schema_id, target_schema_id, name, system_name,
			cardinality, is_required, is_system, configuration, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, rel := range schema.Relations {
		_, err := db.Exec(ctx, query,
			rel.ID, schema.ID, rel.TargetSchemaID, rel.Name, rel.SystemName,
			rel.Cardinality, rel.IsRequired, rel.IsSystem, rel.Configuration,
			rel.CreatedAt)
		if err != nil {
			return r.handlePostgresError("insert relation", err)
		}
	}
	return nil
}

func (r *Repository) loadRelations(ctx context.Context, schemaID uuid.UUID) ([]*schemakit.Relation, error) {
	query := `
        SELECT id, source_schema_id, target_schema_id, name, system_name,
               cardinality, is_required, is_system, configuration, created_at
        FROM schema_relations WHERE source_schema_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, schemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []*schemakit.Relation
	for rows.Next() {
		var rel schemakit.Relation
		if err := rows.Scan(
			&rel.ID, &rel.SourceSchemaID, &rel.TargetSchemaID, &rel.Name,
			&rel.SystemName, &rel.Cardinality, &rel.IsRequired, &rel.IsSystem,
			&rel.Configuration, &rel.CreatedAt); err != nil {
			return nil, err
		}
		relations = append(relations, &rel)
	}
	return relations, rows.Err()
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *schemakit.Item) error {
	return r.withTx(ctx, func(db DBTX) error {
		query := `
			INSERT INTO items (
				id, public_id, schema_id, display_name, slug, status, version,
				is_current_version, previous_version_id, parent_item_id,
				concurrency_token, created_by, updated_by, created_at,
				updated_at, published_at, archived_at, deleted_at, deleted_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

		_, err := db.Exec(ctx, query,
			item.ID, item.PublicID, item.SchemaID, item.DisplayName, item.Slug,
			item.Status, item.Version, item.IsCurrentVersion,
			item.PreviousVersionID, item.ParentItemID, item.ConcurrencyToken,
			item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt,
			item.PublishedAt, item.ArchivedAt, item.DeletedAt, item.DeletedBy)
		if err != nil {
			return r.handlePostgresError("create item", err)
		}
		if err := r.insertValues(ctx, db, item); err != nil {
			return err
		}
		if err := r.insertItemRelations(ctx, db, item); err != nil {
			return err
		}
		return r.insertAudit(ctx, db, "item_audit", "item_id", item.ID, item.History)
	})
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*schemakit.Item, error) {
	return r.getItem(ctx, `WHERE id = $1`, id)
}

func (r *Repository) GetItemByPublicID(ctx context.Context, publicID string) (*schemakit.Item, error) {
	return r.getItem(ctx, `WHERE public_id = $1`, publicID)
}

func (r *Repository) GetItemBySlug(ctx context.Context, schemaID uuid.UUID, slug string) (*schemakit.Item, error) {
	query := `
        SELECT id FROM items
        WHERE schema_id = $1 AND slug = $2 AND is_current_version AND deleted_at IS NULL`

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, schemaID, slug).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schemakit.ErrItemNotFound
		}
		return nil, err
	}
	return r.GetItem(ctx, id)
}

func (r *Repository) getItem(ctx context.Context, where string, arg interface{}) (*schemakit.Item, error) {
	query := `
        SELECT id, public_id, schema_id, display_name, slug, status, version,
               is_current_version, previous_version_id, parent_item_id,
               concurrency_token, created_by, updated_by, created_at,
               updated_at, published_at, archived_at, deleted_at, deleted_by
        FROM items ` + where

	var item schemakit.Item
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&item.ID, &item.PublicID, &item.SchemaID, &item.DisplayName, &item.Slug,
		&item.Status, &item.Version, &item.IsCurrentVersion,
		&item.PreviousVersionID, &item.ParentItemID, &item.ConcurrencyToken,
		&item.CreatedBy, &item.UpdatedBy, &item.CreatedAt, &item.UpdatedAt,
		&item.PublishedAt, &item.ArchivedAt, &item.DeletedAt, &item.DeletedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schemakit.ErrItemNotFound
		}
		return nil, err
	}

	if item.Values, err = r.loadValues(ctx, item.ID); err != nil {
		return nil, err
	}
	if item.Relations, err = r.loadItemRelations(ctx, item.ID); err != nil {
		return nil, err
	}
	if item.History, err = r.loadAudit(ctx, "item_audit", "item_id", item.ID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) SaveItem(ctx context.Context, item *schemakit.Item) error {
	return r.withTx(ctx, func(db DBTX) error {
		// The token predicate rejects writes against a row modified since
		// this aggregate was loaded.
		query := `
			UPDATE items SET
				display_name = $2, slug = $3, status = $4, version = $5,
				is_current_version = $6, previous_version_id = $7,
				parent_item_id = $8, updated_by = $9, updated_at = $10,
				published_at = $11, archived_at = $12, deleted_at = $13,
				deleted_by = $14, concurrency_token = concurrency_token + 1
			WHERE id = $1 AND concurrency_token = $15`

		tag, err := db.Exec(ctx, query,
			item.ID, item.DisplayName, item.Slug, item.Status, item.Version,
			item.IsCurrentVersion, item.PreviousVersionID, item.ParentItemID,
			item.UpdatedBy, item.UpdatedAt, item.PublishedAt, item.ArchivedAt,
			item.DeletedAt, item.DeletedBy, item.ConcurrencyToken)
		if err != nil {
			return r.handlePostgresError("save item", err)
		}
		if tag.RowsAffected() == 0 {
			return r.staleOrMissing(ctx, db, "items", item.ID, schemakit.ErrItemNotFound)
		}
		item.ConcurrencyToken++

		if _, err := db.Exec(ctx, `DELETE FROM item_values WHERE item_id = $1`, item.ID); err != nil {
			return r.handlePostgresError("save item values", err)
		}
		if err := r.insertValues(ctx, db, item); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, `DELETE FROM item_relations WHERE item_id = $1`, item.ID); err != nil {
			return r.handlePostgresError("save item relations", err)
		}
		if err := r.insertItemRelations(ctx, db, item); err != nil {
			return err
		}
		return r.insertAudit(ctx, db, "item_audit", "item_id", item.ID, item.History)
	})
}

func (r *Repository) ListItems(ctx context.Context, params schemakit.ListItemsParams) ([]*schemakit.Item, error) {
	query := `SELECT id FROM items WHERE 1=1`
	var args []interface{}
	if !params.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if params.SchemaID != nil {
		args = append(args, *params.SchemaID)
		query += fmt.Sprintf(` AND schema_id = $%d`, len(args))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if params.CurrentOnly {
		query += ` AND is_current_version`
	}
	query += ` ORDER BY created_at DESC`
	if params.Limit != nil {
		args = append(args, *params.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if params.Offset != nil {
		args = append(args, *params.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := make([]*schemakit.Item, 0, len(ids))
	for _, id := range ids {
		item, err := r.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) insertValues(ctx context.Context, db DBTX, item *schemakit.Item) error {
	query := `
		INSERT INTO item_values (
			id, item_id, field_id, value_revision, concurrency_token,
			string_value, int_value, decimal_value, bool_value, time_value,
			file_path_value, relation_value, json_value, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	for _, v := range item.Values {
		_, err := db.Exec(ctx, query,
			v.ID, item.ID, v.FieldID, v.Revision, item.ConcurrencyToken,
			v.StringValue, v.IntValue, v.DecimalValue, v.BoolValue,
			v.TimeValue, v.FilePathValue, v.RelationValue, v.JSONValue,
			v.CreatedAt, v.UpdatedAt)
		if err != nil {
			return r.handlePostgresError("insert value", err)
		}
	}
	return nil
}

func (r *Repository) loadValues(ctx context.Context, itemID uuid.UUID) (map[uuid.UUID]*schemakit.Value, error) {
	query := `
        SELECT id, item_id, field_id, value_revision, concurrency_token,
               string_value, int_value, decimal_value, bool_value, time_value,
               file_path_value, relation_value, json_value, created_at, updated_at
        FROM item_values WHERE item_id = $1`

	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[uuid.UUID]*schemakit.Value)
	for rows.Next() {
		var v schemakit.Value
		if err := rows.Scan(
			&v.ID, &v.ItemID, &v.FieldID, &v.Revision, &v.ConcurrencyToken,
			&v.StringValue, &v.IntValue, &v.DecimalValue, &v.BoolValue,
			&v.TimeValue, &v.FilePathValue, &v.RelationValue, &v.JSONValue,
			&v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		values[v.FieldID] = &v
	}
	return values, rows.Err()
}

func (r *Repository) insertItemRelations(ctx context.Context, db DBTX, item *schemakit.Item) error {
	query := `
		INSERT INTO item_relations (id, item_id, target_item_id, relation_type, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	for _, rel := range item.Relations {
		_, err := db.Exec(ctx, query,
			rel.ID, item.ID, rel.TargetItemID, rel.RelationType, rel.CreatedAt)
		if err != nil {
			return r.handlePostgresError("insert item relation", err)
		}
	}
	return nil
}

func (r *Repository) loadItemRelations(ctx context.Context, itemID uuid.UUID) ([]*schemakit.ItemRelation, error) {
	query := `
        SELECT id, item_id, target_item_id, relation_type, created_at
        FROM item_relations WHERE item_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []*schemakit.ItemRelation
	for rows.Next() {
		var rel schemakit.ItemRelation
		if err := rows.Scan(&rel.ID, &rel.ItemID, &rel.TargetItemID,
			&rel.RelationType, &rel.CreatedAt); err != nil {
			return nil, err
		}
		relations = append(relations, &rel)
	}
	return relations, rows.Err()
}

// insertAudit appends history entries; already persisted entries are skipped
// by ID so histories stay append-only across saves.
func (r *Repository) insertAudit(ctx context.Context, db DBTX, table, ownerColumn string, ownerID uuid.UUID, history []schemakit.AuditEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, actor, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`, table, ownerColumn)

	for _, entry := range history {
		_, err := db.Exec(ctx, query,
			entry.ID, ownerID, entry.Actor, entry.Description, entry.CreatedAt)
		if err != nil {
			return r.handlePostgresError("insert audit entry", err)
		}
	}
	return nil
}

func (r *Repository) loadAudit(ctx context.Context, table, ownerColumn string, ownerID uuid.UUID) ([]schemakit.AuditEntry, error) {
	query := fmt.Sprintf(`
        SELECT id, actor, description, created_at
        FROM %s WHERE %s = $1 ORDER BY created_at`, table, ownerColumn)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []schemakit.AuditEntry
	for rows.Next() {
		var entry schemakit.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Description,
			&entry.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}
