// Package all wires every built-in source connector into the connector
// factory. It exists purely for side effects: a blank import runs each
// connector package's init, registering the "file", "relational", and
// "document" kinds.
package all

import (
	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector/document"
	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector/file"
	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector/relational"
)
