package main

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	imp, _, err := root.Find([]string{"import"})
	require.NoError(t, err)
	require.NotNil(t, imp.Flags().Lookup("file"))
	require.NotNil(t, imp.Flags().Lookup("mode"))
	require.NotNil(t, imp.Flags().Lookup("batch-size"))
	require.NotNil(t, imp.Flags().Lookup("max-errors"))

	mig, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	require.Equal(t, []string{"up", "status"}, mig.ValidArgs)
}

func TestImportRequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"import"})
	require.ErrorContains(t, root.Execute(), `required flag(s) "file" not set`)
}

func TestMigrateRejectsUnknownAction(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "down"})
	require.Error(t, root.Execute())
}

func TestMigrateSurfacesConfigError(t *testing.T) {
	cmd := newMigrateCmd(func() (*config.Config, error) {
		return nil, stderrors.New("config not found")
	})
	cmd.SetArgs([]string{"up"})
	cmd.SilenceUsage = true
	require.EqualError(t, cmd.Execute(), "config not found")
}
