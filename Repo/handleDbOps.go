package Repo

import (
	"context"
	"fmt"
	"os"

	"slack-todo-extractor/Models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Channel = Models.Channel

// InitDbPool connects to the channel registry database from DATABASE_URL.
// The registry is optional: callers with no DATABASE_URL skip it and the
// scheduler only processes the env-configured channel.
func InitDbPool(dbPool **pgxpool.Pool) error {
	databaseUrl := os.Getenv("DATABASE_URL")
	var dbConnectionError error
	*dbPool, dbConnectionError = pgxpool.New(context.Background(), databaseUrl)
	if dbConnectionError != nil {
		return dbConnectionError
	}
	return nil
}

func SaveChannelToDb(channelId string, dbPool *pgxpool.Pool) error {

	if dbPool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	query := `
		INSERT INTO channels (channel_id)
		VALUES ($1)`

	_, saveChannelToDbError := dbPool.Exec(context.Background(), query, channelId)
	if saveChannelToDbError != nil {
		return saveChannelToDbError
	}

	return nil
}

func CheckChannelInDb(channelId string, dbPool *pgxpool.Pool) (bool, error) {

	if dbPool == nil {
		return false, fmt.Errorf("database pool is not initialized")
	}

	query := `
		SELECT COUNT(*) FROM channels WHERE channel_id = $1`

	var count int
	dbQueryError := dbPool.QueryRow(context.Background(), query, channelId).Scan(&count)
	if dbQueryError != nil {
		return false, dbQueryError
	}

	return count > 0, nil
}

func GetRegisteredChannels(dbPool *pgxpool.Pool) ([]Channel, error) {
	if dbPool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	query := `SELECT channel_id FROM channels`

	rows, dbQueryError := dbPool.Query(context.Background(), query)
	if dbQueryError != nil {
		return nil, dbQueryError
	}
	defer rows.Close()
	var channels []Channel
	for rows.Next() {
		var channel Channel
		if err := rows.Scan(&channel.ChannelID); err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}

	return channels, nil
}
