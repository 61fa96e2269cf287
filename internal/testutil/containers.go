// Package testutil starts disposable database containers for integration
// testing and local development.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/agencykit/contractd/data"
)

const (
	mariadbImage = "mariadb:11.4"
	mariadbPort  = "3306/tcp"
)

// DBContainer is a running MariaDB container with the contractd schema
// applied, plus the connection settings the service expects.
type DBContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
	Database  string
	User      string
	Password  string
}

// StartMariaDB launches a MariaDB container, waits for it to accept
// connections, and applies the embedded DDL and privilege scripts.
func StartMariaDB(ctx context.Context) (*DBContainer, error) {
	database := getenvDefault("DB_DATABASE", "contractdb")
	user := getenvDefault("DB_USER", "contractd")
	password := getenvDefault("DB_PASSWORD", uuid.NewString())
	rootPassword := uuid.NewString()

	req := testcontainers.ContainerRequest{
		Image:        mariadbImage,
		ExposedPorts: []string{mariadbPort},
		Env: map[string]string{
			"MARIADB_DATABASE":      database,
			"MARIADB_USER":          user,
			"MARIADB_PASSWORD":      password,
			"MARIADB_ROOT_PASSWORD": rootPassword,
		},
		WaitingFor: wait.ForListeningPort(mariadbPort).WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mariadb container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, mariadbPort)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mapped port: %w", err)
	}

	dbc := &DBContainer{
		Container: container,
		Host:      host,
		Port:      mapped.Port(),
		Database:  database,
		User:      user,
		Password:  password,
	}

	if err := dbc.applyInitScripts(ctx, rootPassword); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return dbc, nil
}

// applyInitScripts runs the embedded DDL and privilege scripts as root.
func (dbc *DBContainer) applyInitScripts(ctx context.Context, rootPassword string) error {
	dsn := fmt.Sprintf("root:%s@tcp(%s:%s)/%s?multiStatements=true",
		rootPassword, dbc.Host, dbc.Port, dbc.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open root connection: %w", err)
	}
	defer db.Close()

	if err := waitForPing(ctx, db); err != nil {
		return err
	}

	for _, script := range []string{data.InitdbMariaDBTables, data.InitdbMariaDBPrivileges} {
		for _, stmt := range splitStatements(script) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("init script statement failed: %w", err)
			}
		}
	}

	return nil
}

// waitForPing retries the connection until the server answers. The container
// port can be open before the server finishes initializing.
func waitForPing(ctx context.Context, db *sql.DB) error {
	deadline := time.Now().Add(60 * time.Second)
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database did not become ready: %w", err)
		}
		time.Sleep(time.Second)
	}
}

// splitStatements breaks a SQL script into individual statements. The
// embedded scripts contain no literal semicolons inside strings.
func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// Terminate stops and removes the container.
func (dbc *DBContainer) Terminate(ctx context.Context) error {
	if dbc.Container == nil {
		return nil
	}
	return dbc.Container.Terminate(ctx)
}

// Env returns the environment variables that point the service at this
// container.
func (dbc *DBContainer) Env() map[string]string {
	return map[string]string{
		"DB_TYPE":     "mariadb",
		"DB_HOST":     dbc.Host,
		"DB_PORT":     dbc.Port,
		"DB_DATABASE": dbc.Database,
		"DB_USER":     dbc.User,
		"DB_PASSWORD": dbc.Password,
	}
}

func getenvDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
