package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/catalogrepo/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, description FROM textures ORDER BY id ASC").
		WillReturnRows(pgxmock.NewRows([]string{"id", "description"}).
			AddRow(int64(1), "crispy").
			AddRow(int64(2), "creamy"))
	mock.ExpectCommit()

	attrs, err := postgres.New(mock).List(context.Background(), models.KindTexture)
	require.NoError(t, err)
	require.Equal(t, []models.Attribute{{ID: 1, Description: "crispy"}, {ID: 2, Description: "creamy"}}, attrs)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM shapes").WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	_, err = postgres.New(mock).List(context.Background(), models.KindShape)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
