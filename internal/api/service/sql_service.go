package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"mlstudio"
	"mlstudio/internal/api/models"
	"mlstudio/pkg"
)

const schemaCacheTTL = 60 * time.Minute

type SqlService struct {
	logger zerolog.Logger
}

func NewSqlService() *SqlService {
	return &SqlService{
		logger: mlstudio.Logger,
	}
}

// ValidateQuery checks that a query is a single SELECT statement. SQL nodes
// embed their query into the generated script, so anything else is refused.
func (slf *SqlService) ValidateQuery(query string) (bool, string) {
	if !pkg.IsSafeSelect(query) {
		return false, "query must be a single SELECT statement"
	}
	return true, ""
}

// FetchSchema returns the enriched schema of the target database, from cache
// when possible.
func (slf *SqlService) FetchSchema(conn models.DBConnectionConfig) ([]pkg.TableMetadata, error) {
	cacheKey := fmt.Sprintf("conn:%s:%s:%d:%s:schema", conn.Type, conn.Host, conn.Port, conn.Database)

	var schema []pkg.TableMetadata
	if err := pkg.RedisGet(cacheKey, &schema); err != nil {
		if !pkg.IsRedisNil(err) {
			return nil, fmt.Errorf("redis error: %w", err)
		}
		fetched, err := slf.fetchSchema(conn)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch schema: %w", err)
		}
		schema = fetched
		_ = pkg.RedisSet(cacheKey, schema, schemaCacheTTL)
	}
	return schema, nil
}

func (slf *SqlService) fetchSchema(conn models.DBConnectionConfig) ([]pkg.TableMetadata, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch conn.Type {
	case models.DBTypePostgres:
		pool, err := pgxpool.New(ctx, conn.BuildConnectionString())
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return pkg.FindPostgresDatabaseSchema(ctx, pool)

	case models.DBTypeSQLServer:
		db, err := sql.Open(conn.GetDriverName(), conn.BuildConnectionString())
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return pkg.FindSQLServerDatabaseSchema(ctx, db)

	default:
		return nil, fmt.Errorf("unsupported database type for schema fetch: %s", conn.Type)
	}
}
