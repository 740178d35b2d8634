package library

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Settings is a snapshot of the mutable configuration rows. Orchestrators
// take one snapshot per invocation and thread it through, so a settings
// write mid-batch never changes behavior of work already in flight.
type Settings struct {
	Sources       []string    `json:"sources"`
	PlayerScheme  string      `json:"player_scheme"`
	TMDBAPIKey    string      `json:"tmdb_api_key"`
	AntiThrottle  bool        `json:"anti_throttle"`
	UseImageProxy bool        `json:"use_img_proxy"`
	DedupKey      DedupPolicy `json:"dedup_key"`
}

// Settings reads one consistent snapshot of all settings rows.
func (s *Store) Settings() (*Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	out := &Settings{
		PlayerScheme: values["player_scheme"],
		TMDBAPIKey:   values["tmdb_api_key"],
		DedupKey:     DedupByName,
	}
	if raw := values["sources"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &out.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
	}
	out.AntiThrottle = parseBool(values["anti_throttle"])
	out.UseImageProxy = parseBool(values["use_img_proxy"])
	if p := DedupPolicy(values["dedup_key"]); p == DedupByNameYear {
		out.DedupKey = p
	}
	return out, nil
}

// SaveSettings writes every field back as its own row.
func (s *Store) SaveSettings(in *Settings) error {
	sources, err := json.Marshal(in.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	policy := in.DedupKey
	if policy != DedupByNameYear {
		policy = DedupByName
	}

	pairs := map[string]string{
		"sources":       string(sources),
		"player_scheme": in.PlayerScheme,
		"tmdb_api_key":  in.TMDBAPIKey,
		"anti_throttle": strconv.FormatBool(in.AntiThrottle),
		"use_img_proxy": strconv.FormatBool(in.UseImageProxy),
		"dedup_key":     string(policy),
	}
	for k, v := range pairs {
		if err := s.setSetting(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value,
	)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, mapSQLiteError(err))
	}
	return nil
}

// parseBool tolerates the historical "true"/"false" strings plus anything
// strconv accepts.
func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
