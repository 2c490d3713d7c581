package rulelist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleStorage_duplicateID(t *testing.T) {
	t.Parallel()

	lists := []RuleList{
		&StringRuleList{ID: 1, RulesText: "Rewrite /a /b"},
		&StringRuleList{ID: 1, RulesText: "Rewrite /c /d"},
	}

	s, err := NewRuleStorage(lists)
	assert.Nil(t, s)
	assert.EqualError(t, err, "list at index 1: duplicate list id: 1")
}

func TestRuleStorageScanner(t *testing.T) {
	t.Parallel()

	lists := []RuleList{
		&StringRuleList{ID: 1, RulesText: "Rewrite /a/(.*) /b/$1"},
		&StringRuleList{ID: 2, RulesText: "# comment\nRewrite /c/(.*) /d/$1"},
	}

	s, err := NewRuleStorage(lists)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	scanner := s.NewRuleStorageScanner()

	var texts []string
	var listIDs []int
	for scanner.Scan() {
		r, _ := scanner.Rule()
		texts = append(texts, r.Text())
		listIDs = append(listIDs, r.GetListID())
	}

	require.NoError(t, scanner.Err())

	// Lists are scanned in registration order, so the order of rules
	// across lists is the source order of the whole set.
	assert.Equal(t, []string{"Rewrite /a/(.*) /b/$1", "Rewrite /c/(.*) /d/$1"}, texts)
	assert.Equal(t, []int{1, 2}, listIDs)
}

func TestRuleStorageScanner_errorInSecondList(t *testing.T) {
	t.Parallel()

	lists := []RuleList{
		&StringRuleList{ID: 1, RulesText: "Rewrite /a /b"},
		&StringRuleList{ID: 2, RulesText: "Rewrite broken"},
	}

	s, err := NewRuleStorage(lists)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	scanner := s.NewRuleStorageScanner()

	assert.True(t, scanner.Scan())
	assert.False(t, scanner.Scan())

	err = scanner.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list 2: line 1:")
	assert.Contains(t, err.Error(), "missing replacement")
}

func TestFileRuleList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rewrite.conf")
	rulesText := "# test rules\nRewrite /file/(.*) /tmp/$1 [L]\n"
	require.NoError(t, os.WriteFile(path, []byte(rulesText), 0o644))

	list, err := NewFileRuleList(3, path)
	require.NoError(t, err)

	assert.Equal(t, 3, list.GetID())

	// A file list can be scanned more than once, every scanner starts at
	// the beginning of the file.
	for i := 0; i < 2; i++ {
		scanner := list.NewScanner()

		require.True(t, scanner.Scan())
		r, lineNo := scanner.Rule()
		require.NotNil(t, r)

		assert.Equal(t, "Rewrite /file/(.*) /tmp/$1 [L]", r.Text())
		assert.Equal(t, 2, lineNo)

		assert.False(t, scanner.Scan())
		assert.NoError(t, scanner.Err())
	}

	require.NoError(t, list.Close())
}

func TestFileRuleList_missingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFileRuleList(1, filepath.Join(t.TempDir(), "nope.conf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading rule list 1")
}
