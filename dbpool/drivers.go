package dbpool

// Driver registration for every supported engine.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"
)
