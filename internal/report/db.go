package report

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"

	"pfshell/internal/model"
)

const createFindingTable = `
CREATE TABLE IF NOT EXISTS audit_finding (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	hostname VARCHAR(255) NOT NULL,
	criterion VARCHAR(64) NOT NULL,
	severity VARCHAR(16) NOT NULL,
	rule_line INT NULL,
	detail TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// DBExporter writes findings to a MariaDB table, one row per finding.
type DBExporter struct {
	db *sql.DB
}

func NewDBExporter(dsn string) (*DBExporter, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &DBExporter{db: db}, nil
}

func (e *DBExporter) Close() {
	e.db.Close()
}

// Export inserts every finding, grouped by criterion in catalog order. Like
// the spreadsheet sink it is best-effort: a group that fails to insert is
// logged and skipped.
func (e *DBExporter) Export(hostname string, buckets map[model.CriterionID][]model.Finding) error {
	if _, err := e.db.Exec(createFindingTable); err != nil {
		return fmt.Errorf("failed to ensure audit_finding table: %w", err)
	}

	stmt, err := e.db.Prepare("INSERT INTO audit_finding (hostname, criterion, severity, rule_line, detail) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	var failures []error
	for _, sev := range model.Severities {
		for _, g := range SeverityGroups(buckets, sev) {
			if err := exportGroup(stmt, hostname, g); err != nil {
				slog.Warn("Failed to export finding group", "criterion", g.ID, "error", err)
				failures = append(failures, err)
			}
		}
	}
	return errors.Join(failures...)
}

func exportGroup(stmt *sql.Stmt, hostname string, g Group) error {
	for _, f := range g.Findings {
		var line sql.NullInt64
		var detail string
		if f.Rule != nil {
			if f.Rule.LineNumber > 0 {
				line = sql.NullInt64{Int64: int64(f.Rule.LineNumber), Valid: true}
			}
			detail = fmt.Sprintf("iface=%s type=%s src=%s dst=%s descr=%q",
				f.Rule.Interface, typeText(f.Rule),
				endpointText(f.Rule, f.Rule.Source),
				endpointText(f.Rule, f.Rule.Destination),
				f.Rule.Description)
		} else {
			detail = snmpText(f.Snmp)
		}
		if _, err := stmt.Exec(hostname, string(f.Criterion), string(f.Severity), line, detail); err != nil {
			return err
		}
	}
	return nil
}
