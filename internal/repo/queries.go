package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Queries concentra o acesso às tabelas users e sessions.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria o conjunto de queries sobre o pool informado.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByEmail busca usuário pelo e-mail exato. A comparação é
// case-sensitive: normalizar a caixa aqui quebraria contas já cadastradas
// com variação de maiúsculas.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByID busca usuário pelo identificador.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// InsertUser cadastra um novo usuário e devolve a linha persistida.
func (q *Queries) InsertUser(ctx context.Context, email, passwordHash string, fullName *string, role Role) (User, error) {
	row := q.pool.QueryRow(ctx, `
        INSERT INTO users (email, password_hash, full_name, role, is_active)
        VALUES ($1, $2, $3, $4, TRUE)
        RETURNING `+userColumns,
		email, passwordHash, fullName, role)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return user, nil
}

// ListUsers devolve todos os usuários ordenados por criação.
func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole troca o papel do usuário.
func (q *Queries) UpdateUserRole(ctx context.Context, id uuid.UUID, role Role) error {
	cmd, err := q.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserActive liga/desliga a conta.
func (q *Queries) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	cmd, err := q.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser remove o usuário e, por arrasto, suas sessões.
func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := q.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, id); err != nil {
		return err
	}
	cmd, err := q.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertSession persiste uma nova sessão. Cada login gera uma linha;
// sessões concorrentes do mesmo usuário são permitidas.
func (q *Queries) InsertSession(ctx context.Context, arg InsertSessionParams) (Session, error) {
	row := q.pool.QueryRow(ctx, `
        INSERT INTO sessions (id, user_id, token_hash, expires_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, user_id, token_hash, expires_at, created_at`,
		arg.ID, arg.UserID, arg.TokenHash, arg.ExpiresAt)

	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// GetSessionByTokenHash busca sessão viva pelo hash do token. Sessões
// expiradas contam como inexistentes; não há renovação implícita.
func (q *Queries) GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	row := q.pool.QueryRow(ctx, `
        SELECT id, user_id, token_hash, expires_at, created_at
        FROM sessions
        WHERE token_hash = $1 AND expires_at > now()`,
		tokenHash)

	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// DeleteSessionByTokenHash remove a sessão. Idempotente: ausência não é erro.
func (q *Queries) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteExpiredSessions apaga sessões vencidas há mais tempo que o corte.
func (q *Queries) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := q.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
