package services

import (
	"context"
	"fmt"

	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	db *data.PgDbContext
}

func NewAuthService(db *data.PgDbContext) *AuthService {
	return &AuthService{db: db}
}

func (s *AuthService) Login(ctx context.Context, request *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.getUserByEmail(ctx, request.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password))
	if err != nil {
		return nil, err
	}

	player, err := s.getPlayerByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateJWTTokenWithClaims(utils.Claims{UserID: user.ID, PlayerID: player.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{
		User: models.UserPlayer{
			ID:     user.ID,
			Player: *player,
		},
		Token: token,
	}, nil
}

// Register creates the user and its player profile with a fresh
// economy (level 1, multipliers at 1).
func (s *AuthService) Register(ctx context.Context, request *models.RegisterRequest) error {
	user, err := s.getUserByEmail(ctx, request.Email)
	if err != nil {
		return err
	}

	if user != nil {
		return fmt.Errorf("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	userID := uuid.New().String()

	return s.db.WithTransaction(ctx, func(tx data.QueryRunner) error {
		query := `
			INSERT INTO users (id, email, password_hash, created_at)
			VALUES ($1, $2, $3, NOW())
		`

		if _, err := tx.Exec(ctx, query, userID, request.Email, string(hashedPassword)); err != nil {
			return err
		}

		query = `
			INSERT INTO players (id, user_id, username, xp, coins, level, streak, xp_multiplier, coin_multiplier, created_at, updated_at)
			VALUES ($1, $2, $3, 0, 0, 1, 0, 1, 1, NOW(), NOW())
		`

		_, err := tx.Exec(ctx, query, uuid.New().String(), userID, request.Username)
		return err
	})
}

func (s *AuthService) getUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash FROM users WHERE email = $1`

	var user models.User
	err := s.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.Password)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (s *AuthService) getPlayerByUserID(ctx context.Context, userID string) (*models.Player, error) {
	query := `
		SELECT id, user_id, username, xp, coins, level, streak, xp_multiplier, coin_multiplier
		FROM players
		WHERE user_id = $1
	`

	var player models.Player
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&player.ID, &player.UserID, &player.Username,
		&player.XP, &player.Coins, &player.Level, &player.Streak,
		&player.Multipliers.XP, &player.Multipliers.Coins,
	)
	if err != nil {
		return nil, err
	}

	return &player, nil
}
