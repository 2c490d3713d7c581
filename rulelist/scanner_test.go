package rulelist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleScannerOfStringReader(t *testing.T) {
	t.Parallel()

	rulesText := `# redirect legacy paths
Rewrite /old/(.*) /new/$1

Rewrite /blocked/(.*) - [F]`
	scanner := NewRuleScanner(strings.NewReader(rulesText), 1)

	require.True(t, scanner.Scan())
	r, lineNo := scanner.Rule()
	require.NotNil(t, r)

	assert.Equal(t, "Rewrite /old/(.*) /new/$1", r.Text())
	assert.Equal(t, 1, r.GetListID())
	assert.Equal(t, 2, lineNo)

	require.True(t, scanner.Scan())
	r, lineNo = scanner.Rule()
	require.NotNil(t, r)

	assert.Equal(t, "Rewrite /blocked/(.*) - [F]", r.Text())
	assert.Equal(t, 4, lineNo)

	assert.False(t, scanner.Scan())
	assert.False(t, scanner.Scan())
	assert.NoError(t, scanner.Err())
}

func TestRuleScanner_failFast(t *testing.T) {
	t.Parallel()

	rulesText := `Rewrite /a/(.*) /b/$1
# fine so far
Rewrite /c /d [BOGUS]
Rewrite /never /seen`
	scanner := NewRuleScanner(strings.NewReader(rulesText), 7)

	require.True(t, scanner.Scan())

	// The malformed third line stops the whole scan, the valid rule after
	// it is never produced.
	assert.False(t, scanner.Scan())

	err := scanner.Err()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "list 7: line 3:")
	assert.Contains(t, err.Error(), `unknown rule flag: "BOGUS"`)

	assert.False(t, scanner.Scan())
}
