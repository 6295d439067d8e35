package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scenarios (
    scenario_id          TEXT PRIMARY KEY,
    name                 TEXT NOT NULL UNIQUE,
    kick_off             TEXT NOT NULL,
    price                REAL NOT NULL,
    params_json          TEXT NOT NULL,
    fingerprint          TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scenario_channels (
    scenario_id          TEXT NOT NULL REFERENCES scenarios(scenario_id) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    kind                 TEXT NOT NULL,
    cpa                  REAL,
    PRIMARY KEY (scenario_id, position)
);

CREATE INDEX IF NOT EXISTS idx_scenarios_updated ON scenarios(updated_at);
`
