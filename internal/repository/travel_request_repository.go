package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-request-service/internal/domain"
)

// TravelRequestWithOwner joins a request with its owner's public fields.
type TravelRequestWithOwner struct {
	domain.TravelRequest
	UserName  string
	UserEmail string
}

// TravelRequestRepository encapsulates travel request persistence.
type TravelRequestRepository interface {
	Create(ctx context.Context, request *domain.TravelRequest) error
	GetByID(ctx context.Context, id int64) (*domain.TravelRequest, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]TravelRequestWithOwner, error)
	ListAll(ctx context.Context) ([]TravelRequestWithOwner, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error
}

type travelRequestRepository struct {
	pool *pgxpool.Pool
}

// NewTravelRequestRepository instantiates repository.
func NewTravelRequestRepository(pool *pgxpool.Pool) TravelRequestRepository {
	return &travelRequestRepository{pool: pool}
}

func (r *travelRequestRepository) Create(ctx context.Context, request *domain.TravelRequest) error {
	const query = `
        INSERT INTO travel_requests (origin_city, destination_city, departure_date, return_date, justification, status, user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		request.OriginCity,
		request.DestinationCity,
		request.DepartureDate,
		request.ReturnDate,
		request.Justification,
		request.Status,
		request.UserID,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *travelRequestRepository) GetByID(ctx context.Context, id int64) (*domain.TravelRequest, error) {
	const query = `
        SELECT id, origin_city, destination_city, departure_date, return_date, justification, status, created_at, user_id
        FROM travel_requests WHERE id=$1`

	var request domain.TravelRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.OriginCity,
		&request.DestinationCity,
		&request.DepartureDate,
		&request.ReturnDate,
		&request.Justification,
		&request.Status,
		&request.CreatedAt,
		&request.UserID,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

const listProjection = `
        SELECT tr.id, tr.origin_city, tr.destination_city, tr.departure_date, tr.return_date,
               tr.justification, tr.status, tr.created_at, tr.user_id, u.name, u.email
        FROM travel_requests tr
        JOIN users u ON u.id = tr.user_id`

func (r *travelRequestRepository) ListByOwner(ctx context.Context, ownerID int64) ([]TravelRequestWithOwner, error) {
	query := listProjection + `
        WHERE tr.user_id=$1
        ORDER BY tr.created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequestsWithOwner(rows)
}

func (r *travelRequestRepository) ListAll(ctx context.Context) ([]TravelRequestWithOwner, error) {
	query := listProjection + `
        ORDER BY tr.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequestsWithOwner(rows)
}

func (r *travelRequestRepository) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	const query = `
        UPDATE travel_requests SET status=$1
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRequestsWithOwner(rows pgx.Rows) ([]TravelRequestWithOwner, error) {
	var result []TravelRequestWithOwner
	for rows.Next() {
		var item TravelRequestWithOwner
		if err := rows.Scan(
			&item.ID,
			&item.OriginCity,
			&item.DestinationCity,
			&item.DepartureDate,
			&item.ReturnDate,
			&item.Justification,
			&item.Status,
			&item.CreatedAt,
			&item.UserID,
			&item.UserName,
			&item.UserEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
