package models

import "fmt"

type DBType string

const (
	DBTypePostgres  DBType = "postgres"
	DBTypeMySQL     DBType = "mysql"
	DBTypeSQLServer DBType = "sqlserver"
)

// DBConnectionConfig describes an external database the editor can browse and
// the load_sql node can read from. Never persisted with the workflow; it
// travels in requests only.
type DBConnectionConfig struct {
	Type     DBType `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

func (slf DBConnectionConfig) GetDriverName() string {
	switch slf.Type {
	case DBTypeMySQL:
		return "mysql"
	case DBTypeSQLServer:
		return "sqlserver"
	default:
		return "postgres"
	}
}

func (slf DBConnectionConfig) BuildConnectionString() string {
	switch slf.Type {
	case DBTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			slf.Username, slf.Password, slf.Host, slf.Port, slf.Database)
	case DBTypeSQLServer:
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			slf.Username, slf.Password, slf.Host, slf.Port, slf.Database)
	default:
		sslMode := slf.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			slf.Host, slf.Port, slf.Username, slf.Password, slf.Database, sslMode)
	}
}

// SQLAlchemyURL renders the connection as the URL format the generated
// pandas.read_sql fragments expect.
func (slf DBConnectionConfig) SQLAlchemyURL() string {
	scheme := ""
	switch slf.Type {
	case DBTypeMySQL:
		scheme = "mysql+pymysql"
	case DBTypeSQLServer:
		scheme = "mssql+pymssql"
	default:
		scheme = "postgresql"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		scheme, slf.Username, slf.Password, slf.Host, slf.Port, slf.Database)
}
