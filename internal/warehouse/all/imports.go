// Package all wires every built-in warehouse backend into the warehouse
// factory. Importing it (blank import) runs each backend's init, which
// registers the "duckdb" and "postgres" kinds.
package all

import (
	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse/duckdb"
	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse/postgres"
)
