package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWorkloads_Default(t *testing.T) {
	workloads, err := LoadWorkloads("")
	require.NoError(t, err)
	require.Len(t, workloads, 3)
	require.Equal(t, "front-heavy", workloads[0].Name)
	require.Equal(t, 256, workloads[0].InitialSize)
	require.Equal(t, 6, workloads[0].Mix.Insert)
	require.Equal(t, 128, workloads[2].MaxSize)
	require.Equal(t, 16, workloads[2].ChunkSize)
}

func TestLoadWorkloads_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workloads.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workloads:
  - name: tiny
    initialSize: 4
    ops: 10
    mix:
      pushBack: 1
`), 0o600))
	workloads, err := LoadWorkloads(path)
	require.NoError(t, err)
	require.Len(t, workloads, 1)
	require.Equal(t, 1, workloads[0].Mix.total())

	_, err = LoadWorkloads(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)

	big := filepath.Join(dir, "big.yaml")
	require.NoError(t, os.WriteFile(big, make([]byte, MaxWorkloadFileSize+1), 0o600))
	_, err = LoadWorkloads(big)
	require.ErrorIs(t, err, ErrWorkloadInvalid)
}

func TestParseWorkloads_Invalid(t *testing.T) {
	testcases := []struct {
		name string
		doc  string
	}{
		{name: "broken yaml", doc: "workloads: [name: {"},
		{name: "no workloads", doc: "workloads: []"},
		{name: "empty name", doc: "workloads:\n  - ops: 1\n    mix: {insert: 1}"},
		{name: "negative size", doc: "workloads:\n  - name: a\n    ops: -1\n    mix: {insert: 1}"},
		{name: "zero mix", doc: "workloads:\n  - name: a\n    ops: 1"},
		{name: "negative weight", doc: "workloads:\n  - name: a\n    mix: {insert: 2, erase: -1}"},
		{name: "initial over cap", doc: "workloads:\n  - name: a\n    initialSize: 5\n    maxSize: 2\n    mix: {insert: 1}"},
		{name: "too many tracked", doc: "workloads:\n  - name: a\n    tracked: 5000\n    mix: {insert: 1}"},
		{name: "duplicate names", doc: "workloads:\n  - name: a\n    mix: {insert: 1}\n  - name: a\n    mix: {erase: 1}"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			workloads, err := ParseWorkloads([]byte(tc.doc))
			require.Error(tt, err)
			require.Nil(tt, workloads)
		})
	}
}

func TestOpMix_Pick(t *testing.T) {
	mix := OpMix{Insert: 2, PopBack: 1, Assign: 1}
	require.Equal(t, 4, mix.total())
	require.Equal(t, OpInsert, mix.pick(0))
	require.Equal(t, OpInsert, mix.pick(1))
	require.Equal(t, OpPopBack, mix.pick(2))
	require.Equal(t, OpAssign, mix.pick(3))
}
