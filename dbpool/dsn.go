package dbpool

import (
	"database/sql"
	"fmt"
	"time"
)

// openDSN opens a DSN-based engine (MySQL, Snowflake) with retry.
func (m *DBManager) openDSN(driver string, opts OpenOptions) (*sql.DB, error) {
	maxRetries, baseMs := retryParams(opts)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		db, err := sql.Open(driver, opts.Path)
		if err == nil {
			err = db.Ping()
			if err != nil {
				db.Close()
			}
		}

		if err != nil {
			lastErr = err
			m.logger(fmt.Sprintf("[dbpool] %s attempt %d/%d failed: %v", driver, i+1, maxRetries, err))
			if maxRetries > 1 {
				time.Sleep(time.Duration(baseMs*(i+1)) * time.Millisecond)
			}
			continue
		}

		return db, nil
	}

	return nil, fmt.Errorf("dbpool: failed to open %s after %d retries: %w", driver, maxRetries, lastErr)
}
