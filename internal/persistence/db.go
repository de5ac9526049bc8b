// Package persistence provides SQLite storage for finished runs. The
// default ":memory:" store lives only as long as the process.
package persistence

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/task-market/internal/engine"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Store wraps a SQLite connection holding run records.
type Store struct {
	conn *sqlx.DB
}

// DayRow is a stored day result.
type DayRow struct {
	RunID           string `db:"run_id"`
	Day             int    `db:"day"`
	PredictedDemand int    `db:"predicted_demand"`
	TrueDemand      int    `db:"true_demand"`
	TasksPublished  int    `db:"tasks_published"`
	UnmetDemand     int    `db:"unmet_demand"`
	AllocationCost  int    `db:"allocation_cost"`
	GoodProducts    int    `db:"good_products"`
	Defects         int    `db:"defects"`
	Reduction       int    `db:"reduction"`
	ActualPurchase  int    `db:"actual_purchase"`
	ActualProfit    int    `db:"actual_profit"`
	ExpectedProfit  int    `db:"expected_profit"`
}

// CompanyTotal aggregates a company's stored days.
type CompanyTotal struct {
	CompanyID string `db:"company_id"`
	Assigned  int    `db:"assigned"`
	Produced  int    `db:"produced"`
	Defects   int    `db:"defects"`
	Damage    int    `db:"damage"`
	Income    int    `db:"income"`
	Penalty   string `db:"penalty"`
}

// Open opens or creates a database. Pass MemoryDSN for a run-scoped store.
func Open(dsn string) (*Store, error) {
	path := dsn
	if dsn != MemoryDSN && !strings.Contains(dsn, "?") {
		path = dsn + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Every pooled connection to :memory: would be a separate database.
	conn.SetMaxOpenConns(1)

	st := &Store{conn: conn}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.conn.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		days INTEGER NOT NULL,
		initial_capital INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS day_results (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		predicted_demand INTEGER NOT NULL,
		true_demand INTEGER NOT NULL,
		tasks_published INTEGER NOT NULL,
		unmet_demand INTEGER NOT NULL,
		allocation_cost INTEGER NOT NULL,
		good_products INTEGER NOT NULL,
		defects INTEGER NOT NULL,
		reduction INTEGER NOT NULL,
		actual_purchase INTEGER NOT NULL,
		actual_profit INTEGER NOT NULL,
		expected_profit INTEGER NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE TABLE IF NOT EXISTS company_days (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		company_id TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		assigned INTEGER NOT NULL,
		produced INTEGER NOT NULL,
		good INTEGER NOT NULL,
		defects INTEGER NOT NULL,
		damage INTEGER NOT NULL,
		PRIMARY KEY (run_id, day, company_id)
	);

	CREATE TABLE IF NOT EXISTS companies (
		run_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		total_production INTEGER NOT NULL,
		total_defects INTEGER NOT NULL,
		total_income INTEGER NOT NULL,
		total_damage TEXT NOT NULL,
		PRIMARY KEY (run_id, company_id)
	);

	CREATE TABLE IF NOT EXISTS penalties (
		run_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		total_damage TEXT NOT NULL,
		penalty_amount TEXT NOT NULL,
		penalty_rate TEXT NOT NULL,
		damage_days INTEGER NOT NULL,
		PRIMARY KEY (run_id, company_id)
	);

	CREATE INDEX IF NOT EXISTS idx_company_days_company ON company_days(run_id, company_id);
	`
	_, err := st.conn.Exec(schema)
	return err
}

// SaveRun writes a finished run in one transaction.
func (st *Store) SaveRun(run *engine.RunResult) error {
	runID := run.RunID.String()
	slog.Info("saving run", "run_id", runID, "days", len(run.Days))

	tx, err := st.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO runs (id, seed, days, initial_capital) VALUES (?, ?, ?, ?)",
		runID, run.Seed, len(run.Days), run.InitialCapital,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	dayStmt, err := tx.Preparex(`INSERT INTO day_results
		(run_id, day, predicted_demand, true_demand, tasks_published, unmet_demand,
		 allocation_cost, good_products, defects, reduction, actual_purchase,
		 actual_profit, expected_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer dayStmt.Close()

	compStmt, err := tx.Preparex(`INSERT INTO company_days
		(run_id, day, company_id, capacity, assigned, produced, good, defects, damage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer compStmt.Close()

	for _, d := range run.Days {
		if _, err := dayStmt.Exec(
			runID, d.Day, d.PredictedDemand, d.TrueDemand, d.TasksPublished, d.UnmetDemand,
			d.AllocationCost, d.TotalGoodProducts, d.DefectsToday, d.PurchaseReduction,
			d.ActualPurchase, d.ActualProfit, d.ExpectedProfit,
		); err != nil {
			return fmt.Errorf("insert day %d: %w", d.Day, err)
		}

		ids := make([]string, 0, len(d.Production))
		for id := range d.Production {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			c := d.Production[id]
			if _, err := compStmt.Exec(
				runID, d.Day, id, c.Capacity, c.Assigned, c.Produced, c.Good, c.Defects, c.Damage,
			); err != nil {
				return fmt.Errorf("insert company day %d/%s: %w", d.Day, id, err)
			}
		}
	}

	for i, c := range run.Companies {
		if _, err := tx.Exec(`INSERT INTO companies
			(run_id, company_id, position, name, total_production, total_defects, total_income, total_damage)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, c.ID, i, c.Name, c.TotalProduction, c.TotalDefects, c.TotalIncome, c.TotalDamage.String(),
		); err != nil {
			return fmt.Errorf("insert company %s: %w", c.ID, err)
		}
	}

	for id, p := range run.Penalties {
		if _, err := tx.Exec(`INSERT INTO penalties
			(run_id, company_id, total_damage, penalty_amount, penalty_rate, damage_days)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, id, p.TotalDamage.String(), p.PenaltyAmount.String(), p.PenaltyRate.String(), p.DamageDays,
		); err != nil {
			return fmt.Errorf("insert penalty %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run saved", "run_id", runID)
	return nil
}

// Days returns a run's stored day rows in day order.
func (st *Store) Days(runID string) ([]DayRow, error) {
	var rows []DayRow
	err := st.conn.Select(&rows, `SELECT run_id, day, predicted_demand, true_demand, tasks_published,
		unmet_demand, allocation_cost, good_products, defects, reduction, actual_purchase,
		actual_profit, expected_profit
		FROM day_results WHERE run_id = ? ORDER BY day`, runID)
	return rows, err
}

// ForecastError returns the mean absolute error between predicted and true
// demand over a run.
func (st *Store) ForecastError(runID string) (float64, error) {
	var mae float64
	err := st.conn.Get(&mae,
		"SELECT COALESCE(AVG(ABS(predicted_demand - true_demand)), 0) FROM day_results WHERE run_id = ?",
		runID,
	)
	return mae, err
}

// CompanyTotals aggregates each company's days, in company table order.
// Penalty is empty when the run never settled.
func (st *Store) CompanyTotals(runID string) ([]CompanyTotal, error) {
	var totals []CompanyTotal
	err := st.conn.Select(&totals, `
		SELECT c.company_id,
			COALESCE(SUM(d.assigned), 0) AS assigned,
			COALESCE(SUM(d.produced), 0) AS produced,
			COALESCE(SUM(d.defects), 0) AS defects,
			COALESCE(SUM(d.damage), 0) AS damage,
			c.total_income AS income,
			COALESCE(p.penalty_amount, '') AS penalty
		FROM companies c
		LEFT JOIN company_days d ON d.run_id = c.run_id AND d.company_id = c.company_id
		LEFT JOIN penalties p ON p.run_id = c.run_id AND p.company_id = c.company_id
		WHERE c.run_id = ?
		GROUP BY c.company_id, c.position, c.total_income, p.penalty_amount
		ORDER BY c.position`, runID)
	return totals, err
}
