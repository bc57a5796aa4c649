package storage

const (
	insertRunSQL = `
INSERT INTO runs (blanket,
                  dive,
                  deployment,
                  latitude,
                  longitude,
                  deployed_at,
                  recovered_at,
                  top_logger_id,
                  bottom_logger_id,
                  top_offset,
                  bottom_offset)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunSQL = `
SELECT
    id,
    created_at,
    blanket,
    dive,
    deployment,
    latitude,
    longitude,
    deployed_at,
    recovered_at,
    top_logger_id,
    bottom_logger_id,
    top_offset,
    bottom_offset
FROM runs
WHERE
    id = ?`

	selectRunsSQL = `
SELECT
    id,
    created_at,
    blanket,
    dive,
    deployment,
    latitude,
    longitude,
    deployed_at,
    recovered_at,
    top_logger_id,
    bottom_logger_id,
    top_offset,
    bottom_offset
FROM runs
ORDER BY created_at, id`

	insertRecordSQL = `
INSERT INTO records (run_id,
                     timestamp,
                     top_temperature,
                     bottom_temperature,
                     differential)
VALUES `

	selectRecordsSQL = `
SELECT
    timestamp,
    top_temperature,
    bottom_temperature,
    differential
FROM records
WHERE
    run_id = ?`
)
