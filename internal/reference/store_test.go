package reference

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pathakanu/mindwell/internal/database/databasetest"
	"github.com/pathakanu/mindwell/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportGlobal_UpsertsByCountry(t *testing.T) {
	store := NewStore(databasetest.New(t))
	ctx := context.Background()

	n, err := store.ImportGlobal(ctx, strings.NewReader(
		"Country,Depression_Rate,Anxiety_Rate,Suicide_Rate,Year\n"+
			"India,4.5,3.5,12.9,2019\n"+
			"Brazil,5.8,9.3,6.9,2019\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.ImportGlobal(ctx, strings.NewReader(
		"year,country,depression_rate,anxiety_rate,suicide_rate\n2021,India,4.7,3.6,12.4\n"))
	require.NoError(t, err)

	rows, err := store.Global(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Brazil", rows[0].Country)
	assert.Equal(t, "India", rows[1].Country)
	assert.Equal(t, 2021, rows[1].Year)
	assert.InDelta(t, 4.7, rows[1].DepressionRate, 1e-9)
}

func TestGlobal_CapsRows(t *testing.T) {
	db := databasetest.New(t)
	for i := 0; i < GlobalLimit+5; i++ {
		require.NoError(t, db.Create(&model.GlobalMentalHealthData{Country: fmt.Sprintf("Country %03d", i), Year: 2020}).Error)
	}

	rows, err := NewStore(db).Global(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, GlobalLimit)
}

func TestImportRegional(t *testing.T) {
	store := NewStore(databasetest.New(t))
	ctx := context.Background()

	n, err := store.ImportRegional(ctx, strings.NewReader(
		"state_name,depression_rate,anxiety_rate,stress_rate\nKerala,3.1,2.9,\nGoa,2.0,1.5,4.2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := store.Regional(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Goa", rows[0].StateName)
	assert.Equal(t, 0.0, rows[1].StressRate)
}

func TestImport_Errors(t *testing.T) {
	store := NewStore(databasetest.New(t))
	ctx := context.Background()

	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"empty", "", "missing header row"},
		{"missing column", "country,depression_rate\nIndia,1\n", `missing column "anxiety_rate"`},
		{"bad number", "country,depression_rate,anxiety_rate,suicide_rate,year\nIndia,x,1,1,2019\n", "line 2: depression_rate"},
		{"blank key", "country,depression_rate,anxiety_rate,suicide_rate,year\n,1,1,1,2019\n", "country is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ImportGlobal(ctx, strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	rows, err := store.Global(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestImport_RepeatedKeysLastRowWins(t *testing.T) {
	store := NewStore(databasetest.New(t))
	ctx := context.Background()

	n, err := store.ImportGlobal(ctx, strings.NewReader(
		"country,depression_rate,anxiety_rate,suicide_rate,year\n"+
			"India,4.5,3.5,12.9,2019\n"+
			"Brazil,5.8,9.3,6.9,2019\n"+
			"India,4.7,3.6,12.4,2021\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	global, err := store.Global(ctx)
	require.NoError(t, err)
	require.Len(t, global, 2)
	assert.Equal(t, "India", global[1].Country)
	assert.Equal(t, 2021, global[1].Year)

	n, err = store.ImportRegional(ctx, strings.NewReader(
		"state_name,depression_rate,anxiety_rate,stress_rate\nGoa,2.0,1.5,4.2\nGoa,2.2,1.6,4.0\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	regional, err := store.Regional(ctx)
	require.NoError(t, err)
	require.Len(t, regional, 1)
	assert.InDelta(t, 2.2, regional[0].DepressionRate, 1e-9)
}

func TestLastByKey(t *testing.T) {
	type row struct{ key, val string }
	got := lastByKey([]row{{"a", "1"}, {"b", "1"}, {"a", "2"}, {"c", "1"}, {"b", "2"}},
		func(r row) string { return r.key })

	assert.Equal(t, []row{{"a", "2"}, {"b", "2"}, {"c", "1"}}, got)
}
