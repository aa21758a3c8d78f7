package etl

import (
	"context"
	"database/sql"
	"net"
	"syscall"
	"time"

	"github.com/cleanflow/bedsync/pkg/database"
	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/cleanflow/bedsync/pkg/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultConnectTimeout = 5 * time.Second

// Opener opens and pings a database/sql pool.
type Opener func(ctx context.Context, driverName, dsn string) (*sql.DB, error)

// SQLSource reads location rows from the external relational database.
type SQLSource struct {
	Open           Opener
	ConnectTimeout time.Duration
	log            *zap.Logger
}

func NewSQLSource() *SQLSource {
	return &SQLSource{
		Open:           database.ConnectSQL,
		ConnectTimeout: DefaultConnectTimeout,
		log:            logger.Named("external-db"),
	}
}

type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *SQLSource) connect(ctx context.Context, cfg models.IntegrationConfig) (*sql.DB, error) {
	driverName, dsn, err := database.ExternalDSN(database.ExternalParams{
		Driver:         cfg.Driver,
		Host:           cfg.Host,
		Port:           cfg.Port,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		ConnectTimeout: s.ConnectTimeout,
	})
	if err != nil {
		return nil, &ConnectionError{Kind: ConnOther, Message: "Connection error: " + err.Error(), Err: err}
	}

	cctx, cancel := context.WithTimeout(ctx, s.ConnectTimeout)
	defer cancel()
	db, err := s.Open(cctx, driverName, dsn)
	if err != nil {
		connErr := ClassifyConnectionError(err)
		s.log.Warn("external connection failed",
			zap.String("host", cfg.Host),
			zap.String("kind", string(connErr.Kind)),
			zap.Error(err))
		return nil, connErr
	}
	return db, nil
}

// TestConnection connects and runs a trivial query. It never returns an error;
// the outcome is in the result message.
func (s *SQLSource) TestConnection(ctx context.Context, cfg models.IntegrationConfig) ConnectionResult {
	db, err := s.connect(ctx, cfg)
	if err != nil {
		return ConnectionResult{Success: false, Message: err.Error()}
	}
	defer db.Close()

	qctx, cancel := context.WithTimeout(ctx, s.ConnectTimeout)
	defer cancel()
	var one int
	if err := db.QueryRowContext(qctx, "SELECT 1").Scan(&one); err != nil {
		return ConnectionResult{Success: false, Message: ClassifyConnectionError(err).Message}
	}
	return ConnectionResult{Success: true, Message: "Connection established successfully."}
}

// FetchRows runs cfg.Query verbatim and returns every row keyed by column name.
func (s *SQLSource) FetchRows(ctx context.Context, cfg models.IntegrationConfig) ([]ExternalRow, error) {
	db, err := s.connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, cfg.Query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query on external database")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read result columns")
	}

	var results []ExternalRow
	for rows.Next() {
		columns := make([]interface{}, len(cols))
		columnPointers := make([]interface{}, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}
		if err := rows.Scan(columnPointers...); err != nil {
			return nil, errors.Wrap(err, "failed to scan external row")
		}

		row := make(ExternalRow, len(cols))
		for i, colName := range cols {
			row[colName] = utils.NormalizeSQLValue(columns[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read external rows")
	}

	s.log.Info("fetched external rows", zap.Int("count", len(results)))
	return results, nil
}

// ClassifyConnectionError maps a driver or network error to an operator message.
func ClassifyConnectionError(err error) *ConnectionError {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return connErr
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return &ConnectionError{Kind: ConnRefused, Err: err,
			Message: "Could not connect to the server. Check the host and port."}
	case isAuthError(err):
		return &ConnectionError{Kind: ConnAuth, Err: err,
			Message: "Authentication failed or database not found. Check the username, password and database name."}
	case isTimeout(err):
		return &ConnectionError{Kind: ConnTimeout, Err: err,
			Message: "Connection timed out. Check that the server is reachable."}
	}
	return &ConnectionError{Kind: ConnOther, Err: err, Message: "Connection error: " + err.Error()}
}

func isAuthError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000", "3D000":
			return true
		}
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case 18456, 18452, 4060:
			return true
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045, 1049:
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
