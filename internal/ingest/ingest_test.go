package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

func TestParseEC2CSV(t *testing.T) {
	in := "region,instance_type,vcpus,memory_gb,owner\n" +
		"Paris,m5.large,2,8,team-a\n" +
		"eu-west-1, c5.xlarge ,4,8.0,\n"

	got, err := ParseEC2CSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []models.EC2Entry{
		{InstanceType: "m5.large", VCPUs: 2, MemoryGB: 8, Region: "Paris"},
		{InstanceType: "c5.xlarge", VCPUs: 4, MemoryGB: 8, Region: "eu-west-1"},
	}, got)
}

func TestParseEC2CSV_MissingColumns(t *testing.T) {
	_, err := ParseEC2CSV(strings.NewReader("instance_type,region\nm5.large,Paris\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing: vcpus, memory_gb")
}

func TestParseEC2CSV_BadRowAbortsBatch(t *testing.T) {
	in := "instance_type,vcpus,memory_gb,region\n" +
		"m5.large,2,8,Paris\n" +
		"m5.xlarge,four,16,Paris\n"

	got, err := ParseEC2CSV(strings.NewReader(in))
	assert.Nil(t, got)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 2, ve.Row)
	assert.Equal(t, "vcpus", ve.Field)
}

func TestParseEC2CSV_ValidationFailure(t *testing.T) {
	in := "instance_type,vcpus,memory_gb,region\nm5.large,2,-8,Paris\n"

	_, err := ParseEC2CSV(strings.NewReader(in))
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, ve.Row)
	assert.Equal(t, "memory_gb", ve.Field)
}

func TestParseEC2CSV_Empty(t *testing.T) {
	_, err := ParseEC2CSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseRDSJSON(t *testing.T) {
	in := `[
		{"engine": "PostgreSQL", "instance_type": "db.t3.medium", "region": "Paris", "multi_az": "Oui", "start": "1/1/2026", "end": "12/31/2026"},
		{"engine": "MariaDB", "instance_type": "db.r5.large", "region": "eu-west-1", "multi_az": "Non", "start": "", "end": ""}
	]`

	got, err := ParseRDSJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.EnginePostgreSQL, got[0].Engine)
	assert.Equal(t, models.MultiAZNo, got[1].MultiAZ)
}

func TestParseRDSJSON_UnknownField(t *testing.T) {
	_, err := ParseRDSJSON(strings.NewReader(`[{"engine": "PostgreSQL", "size": "big"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size")
}

func TestParseRDSJSON_InvalidRowAborts(t *testing.T) {
	in := `[
		{"engine": "PostgreSQL", "instance_type": "db.t3.medium", "region": "Paris", "multi_az": "Oui"},
		{"engine": "Oracle", "instance_type": "db.t3.medium", "region": "Paris", "multi_az": "Oui"}
	]`
	got, err := ParseRDSJSON(strings.NewReader(in))
	assert.Nil(t, got)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 2, ve.Row)
	assert.Equal(t, "engine", ve.Field)
}

func TestParseRDSJSON_NotAnArray(t *testing.T) {
	_, err := ParseRDSJSON(strings.NewReader(`{"engine": "PostgreSQL"}`))
	assert.Error(t, err)
}

func TestParseRDSForm_PerRowErrors(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	specs := []string{
		"engine=PostgreSQL,instance_type=db.t3.medium,region=Paris,multi_az=Oui",
		"engine=MySQL,instance_type=db.t3.medium,region=Paris,multi_az=Oui",
		"engine=MariaDB, instance_type=db.r5.large, region=London, multi_az=Non, start=1/1/2026, end=6/30/2026",
		"engine=MariaDB,bogus",
		"engine=MariaDB,colour=blue",
	}

	entries, errs := ParseRDSForm(specs, now)

	require.Len(t, entries, 2)
	assert.Equal(t, "10/14/2026", entries[0].Start)
	assert.Equal(t, "10/13/2027", entries[0].End)
	assert.Equal(t, "London", entries[1].Region)
	assert.Equal(t, "6/30/2026", entries[1].End)

	require.Len(t, errs, 3)
	rows := make([]int, 0, len(errs))
	for _, err := range errs {
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
		rows = append(rows, ve.Row)
	}
	assert.Equal(t, []int{2, 4, 5}, rows)
}
