package migration

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/models"
)

func TestSchemaDefaultsMatchModelEnums(t *testing.T) {
	schema, err := embeddedMigrations.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)

	// Column defaults must spell the states the way the application writes
	// them, or rows inserted outside the repositories end up with values the
	// enums never parse.
	require.Contains(t, string(schema), fmt.Sprintf("DEFAULT '%s'", models.AlertActive))
	require.Contains(t, string(schema), fmt.Sprintf("DEFAULT '%s'", models.StateUnread))
}
