// Package db stores training-run metadata in SQLite.
package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// TrainingRun is one recorded trainer execution.
type TrainingRun struct {
	ModelName  string    `json:"model_name"`
	MAE        float64   `json:"mae"`
	RMSE       float64   `json:"rmse"`
	R2         float64   `json:"r2"`
	DataPoints int       `json:"data_points"`
	TrainedAt  time.Time `json:"trained_at"`
}

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50),
        mae REAL,
        rmse REAL,
        r2 REAL,
        data_points INTEGER,
        trained_at DATETIME
    );
    `
	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveTrainingRun appends one trainer execution to the log.
func SaveTrainingRun(run TrainingRun) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (model_name, mae, rmse, r2, data_points, trained_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		run.ModelName, run.MAE, run.RMSE, run.R2, run.DataPoints, run.TrainedAt)
	return err
}

// LatestTrainingRun returns the most recent run, or sql.ErrNoRows when the
// log is empty.
func LatestTrainingRun() (*TrainingRun, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	var run TrainingRun
	err := database.QueryRow(`
        SELECT model_name, mae, rmse, r2, data_points, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
        LIMIT 1`).Scan(&run.ModelName, &run.MAE, &run.RMSE, &run.R2, &run.DataPoints, &run.TrainedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LoadTrainingLog returns all recorded runs, most recent first.
func LoadTrainingLog() ([]TrainingRun, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT model_name, mae, rmse, r2, data_points, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]TrainingRun, 0)
	for rows.Next() {
		var run TrainingRun
		if err := rows.Scan(&run.ModelName, &run.MAE, &run.RMSE, &run.R2, &run.DataPoints, &run.TrainedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
