package database

import (
	"database/sql"
	"time"

	"gridbot/internal/models"

	_ "github.com/go-sql-driver/mysql"
)

type DB struct {
	*sql.DB
}

func NewConnection(databaseURL string) (*DB, error) {
	db, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

// RecordFill inserts a filled order into the fills table.
func (db *DB) RecordFill(order models.OrderRecord) error {
	query := `INSERT INTO fills (order_id, symbol, side, price, size, executed, avg_price, filled_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		order.OrderID,
		order.OrderSymbol,
		string(order.OrderSide),
		order.OrderPrice.String(),
		order.OrderSize.String(),
		order.Executed.String(),
		order.Avg.String(),
		time.Now())
	return err
}
