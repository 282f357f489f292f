package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

var (
	ErrProfileExists = errors.New("profile already exists")
	ErrBadPassword   = errors.New("invalid password")
	ErrInvalidName   = errors.New("profile names are 1-24 letters, digits, '_' or '-'")
)

// bcryptCost is lowered by tests.
var bcryptCost = 12

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,24}$`)

// ValidName reports whether name can be used as a profile name.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// saveColumns are the profile columns mirrored from progress.SaveData, in
// the order scanSave and saveArgs use.
const saveColumns = `level, money, range_level, battery_level, attack_level,
	fire, water, grass, fire_uses, water_uses, grass_uses, battery,
	attack_selected, enemies_killed, levels_completed, deaths`

func saveArgs(s progress.SaveData) []any {
	return []any{
		s.Level, s.Money, s.RangeLevel, s.BatteryLevel, s.AttackLevel,
		s.Fire, s.Water, s.Grass, s.FireUses, s.WaterUses, s.GrassUses, s.Battery,
		int(s.AttackSelected), s.EnemiesKilled, s.LevelsCompleted, s.Deaths,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSave(row rowScanner) (progress.SaveData, error) {
	var s progress.SaveData
	var selected int
	err := row.Scan(
		&s.Level, &s.Money, &s.RangeLevel, &s.BatteryLevel, &s.AttackLevel,
		&s.Fire, &s.Water, &s.Grass, &s.FireUses, &s.WaterUses, &s.GrassUses, &s.Battery,
		&selected, &s.EnemiesKilled, &s.LevelsCompleted, &s.Deaths,
	)
	if selected >= 0 && selected < enemy.NumElements {
		s.AttackSelected = enemy.Element(selected)
	}
	return s, err
}

// CreateProfile inserts a profile with a fresh save. An empty password leaves
// the profile unclaimed until Authenticate sets one.
func (d *Database) CreateProfile(name, password string) (int64, error) {
	if !ValidName(name) {
		return 0, ErrInvalidName
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	fresh := progress.NewSaveData()
	args := append([]any{name, hash}, saveArgs(fresh)...)
	query := `INSERT INTO profiles (name, password_hash, ` + saveColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var id int64
	if d.dialect.SupportsLastInsertID() {
		res, err := d.db.Exec(d.qb.Build(query), args...)
		if err != nil {
			return 0, d.createError(err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get profile ID: %w", err)
		}
	} else {
		err := d.db.QueryRow(d.qb.BuildWithReturning(query, "id"), args...).Scan(&id)
		if err != nil {
			return 0, d.createError(err)
		}
	}

	logger.Info("Profile created", "profile", name)
	return id, nil
}

func (d *Database) createError(err error) error {
	if d.dialect.IsDuplicateKeyError(err) {
		return ErrProfileExists
	}
	return fmt.Errorf("failed to create profile: %w", err)
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ProfileExists checks if a profile name is taken (case-insensitive).
func (d *Database) ProfileExists(name string) (bool, error) {
	var exists int
	err := d.db.QueryRow(d.qb.Build("SELECT 1 FROM profiles WHERE name = ?"), name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check profile: %w", err)
	}
	return true, nil
}

// SetPassword replaces the profile's password hash.
func (d *Database) SetPassword(name, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	res, err := d.db.Exec(d.qb.Build("UPDATE profiles SET password_hash = ? WHERE name = ?"), hash, name)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return progress.ErrProfileNotFound
	}
	return nil
}

// Authenticate logs into a profile. Unknown profiles are created with the
// given password and unclaimed ones take it; otherwise the password must
// match the stored hash.
func (d *Database) Authenticate(name, password string) error {
	var hash string
	err := d.db.QueryRow(d.qb.Build("SELECT password_hash FROM profiles WHERE name = ?"), name).Scan(&hash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := d.CreateProfile(name, password); err != nil && !errors.Is(err, ErrProfileExists) {
			return err
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up profile: %w", err)
	case hash == "":
		return d.SetPassword(name, password)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		logger.Warning("Failed login", "profile", name)
		return ErrBadPassword
	}
	return nil
}

// LoadProfile returns the saved progress of name.
func (d *Database) LoadProfile(ctx context.Context, name string) (progress.SaveData, error) {
	row := d.db.QueryRowContext(ctx, d.qb.Build("SELECT "+saveColumns+" FROM profiles WHERE name = ?"), name)
	data, err := scanSave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.SaveData{}, progress.ErrProfileNotFound
	}
	if err != nil {
		return progress.SaveData{}, fmt.Errorf("failed to load profile %s: %w", name, err)
	}
	return data, nil
}

// SaveProfile writes data for name, creating an unclaimed profile if needed.
func (d *Database) SaveProfile(ctx context.Context, name string, data progress.SaveData) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	query := `INSERT INTO profiles (name, ` + saveColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			level = excluded.level,
			money = excluded.money,
			range_level = excluded.range_level,
			battery_level = excluded.battery_level,
			attack_level = excluded.attack_level,
			fire = excluded.fire,
			water = excluded.water,
			grass = excluded.grass,
			fire_uses = excluded.fire_uses,
			water_uses = excluded.water_uses,
			grass_uses = excluded.grass_uses,
			battery = excluded.battery,
			attack_selected = excluded.attack_selected,
			enemies_killed = excluded.enemies_killed,
			levels_completed = excluded.levels_completed,
			deaths = excluded.deaths,
			updated_at = CURRENT_TIMESTAMP`

	args := append([]any{name}, saveArgs(data)...)
	if _, err := d.db.ExecContext(ctx, d.qb.Build(query), args...); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", name, err)
	}
	return nil
}

// ProfileStore adapts a Database to progress.Store.
type ProfileStore struct {
	db    *Database
	owned bool
}

// NewProfileStore wraps an open database; Close leaves it open.
func NewProfileStore(db *Database) *ProfileStore {
	return &ProfileStore{db: db}
}

// OpenStore opens a database that the returned store closes.
func OpenStore(cfg Config) (*ProfileStore, error) {
	db, err := OpenWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &ProfileStore{db: db, owned: true}, nil
}

// Database returns the underlying database.
func (s *ProfileStore) Database() *Database { return s.db }

func (s *ProfileStore) Load(ctx context.Context, profile string) (progress.SaveData, error) {
	return s.db.LoadProfile(ctx, profile)
}

func (s *ProfileStore) Save(ctx context.Context, profile string, data progress.SaveData) error {
	return s.db.SaveProfile(ctx, profile, data)
}

func (s *ProfileStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
