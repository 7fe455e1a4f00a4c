package repository

import (
	"context"
	"fmt"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TableTypeRepository is read access to the branch inventory owned by the
// surrounding platform. Quantity changes out of band, so callers never cache
// what they read here.
type TableTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TableType, error)
	FindByBranchID(ctx context.Context, branchID uuid.UUID) ([]*entity.TableType, error)
}

type tableTypeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTableTypeRepository(db database.PgxIface, log *zap.Logger) TableTypeRepository {
	return &tableTypeRepository{
		db:  db,
		log: log.With(zap.String("repository", "table_type")),
	}
}

func (r *tableTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TableType, error) {
	query := `
		SELECT id, branch_id, name, capacity, quantity, price, created_at, updated_at
		FROM table_types
		WHERE id = $1
	`

	var tableType entity.TableType
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tableType.ID,
		&tableType.BranchID,
		&tableType.Name,
		&tableType.Capacity,
		&tableType.Quantity,
		&tableType.Price,
		&tableType.CreatedAt,
		&tableType.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find table type by ID",
			zap.Error(err),
			zap.String("table_type_id", id.String()),
		)
		return nil, fmt.Errorf("find table type by ID %s: %w", id.String(), err)
	}

	return &tableType, nil
}

func (r *tableTypeRepository) FindByBranchID(ctx context.Context, branchID uuid.UUID) ([]*entity.TableType, error) {
	query := `
		SELECT id, branch_id, name, capacity, quantity, price, created_at, updated_at
		FROM table_types
		WHERE branch_id = $1
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, branchID)
	if err != nil {
		r.log.Error("Failed to find table types by branch ID",
			zap.Error(err),
			zap.String("branch_id", branchID.String()),
		)
		return nil, fmt.Errorf("find table types by branch ID %s: %w", branchID.String(), err)
	}
	defer rows.Close()

	var tableTypes []*entity.TableType
	for rows.Next() {
		var tableType entity.TableType
		err := rows.Scan(
			&tableType.ID,
			&tableType.BranchID,
			&tableType.Name,
			&tableType.Capacity,
			&tableType.Quantity,
			&tableType.Price,
			&tableType.CreatedAt,
			&tableType.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan table type row", zap.Error(err))
			return nil, fmt.Errorf("scan table type row: %w", err)
		}
		tableTypes = append(tableTypes, &tableType)
	}

	return tableTypes, nil
}
