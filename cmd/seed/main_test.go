package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingapi/internal/book"
	"lendingapi/internal/borrower"
	"lendingapi/internal/platform/logging"
	"lendingapi/internal/store/memory"
)

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	sd := seeder{
		books:     book.NewService(s.Books(), s),
		borrowers: borrower.NewService(s.Borrowers()),
		logger:    logging.Discard(),
	}

	nBooks, nBorrowers, err := sd.run(ctx, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2*len(catalog), nBooks)
	assert.Equal(t, 3, nBorrowers)

	// a second run adds copies but no borrowers
	nBooks, nBorrowers, err = sd.run(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, len(catalog), nBooks)
	assert.Zero(t, nBorrowers)

	all, err := s.Books().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3*len(catalog))
}
