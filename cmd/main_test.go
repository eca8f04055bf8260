package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

func TestChooseMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  string
	}{
		{input: "1\n", want: configpkg.ModeConsole},
		{input: " 2 \n", want: configpkg.ModeDesk},
		{input: "3\n", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range testCases {
		var out bytes.Buffer

		got := chooseMode(bufio.NewReader(strings.NewReader(tc.input)), &out)
		require.Equal(t, tc.want, got, "input %q", tc.input)
		require.Contains(t, out.String(), "1. Console version")
	}
}

func TestChooseModeLeavesConsoleInput(t *testing.T) {
	t.Parallel()

	in := bufio.NewReader(strings.NewReader("1\n9\n"))

	var out bytes.Buffer
	require.Equal(t, configpkg.ModeConsole, chooseMode(in, &out))
	require.NoError(t, runConsole(zerolog.Nop(), in, &out))
	require.Contains(t, out.String(), "Exiting...")
}

func TestRunConsole(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("1\nSonam\n1000\n2\nSonam\n3\n200\n8\n9\n")

	var out bytes.Buffer
	require.NoError(t, runConsole(zerolog.Nop(), in, &out))

	require.Contains(t, out.String(), "Balance for Sonam: 1200")
	require.Contains(t, out.String(), "- Deposited: 200")
	require.Contains(t, out.String(), "Exiting...")
}
