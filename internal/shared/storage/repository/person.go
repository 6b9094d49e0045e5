package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"afro-class/internal/shared/model"
	"afro-class/internal/shared/storage"
	"afro-class/internal/shared/storage/dbutil"
)

const personColumns = `id, email, user_name, name, gender, bio, department, nationality, avatar,
	password_hash, reset_token, grade, subjects, created_at, updated_at`

// rowScanner 兼容 *sql.Row 与 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// table 返回角色对应的表名
func table(role model.Role) (string, error) {
	name := role.Collection()
	if name == "" {
		return "", fmt.Errorf("%w: %q", storage.ErrUnknownRole, role)
	}
	return name, nil
}

func scanPerson(row rowScanner, role model.Role) (*model.Person, error) {
	p := &model.Person{Role: role}
	var grade sql.NullFloat64
	var subjects sql.NullString
	if err := row.Scan(&p.ID, &p.Email, &p.UserName, &p.Name, &p.Gender, &p.Bio,
		&p.Department, &p.Nationality, &p.Avatar, &p.PasswordHash, &p.ResetToken,
		&grade, &subjects, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if grade.Valid {
		g := grade.Float64
		p.Grade = &g
	}
	if subjects.Valid && subjects.String != "" {
		if err := json.Unmarshal([]byte(subjects.String), &p.Subjects); err != nil {
			return nil, fmt.Errorf("decode subjects: %w", err)
		}
	}
	return p, nil
}

// encodeSubjects 科目列表以 JSON 文本存储，nil 存为 NULL
func encodeSubjects(subjects []string) (any, error) {
	if subjects == nil {
		return nil, nil
	}
	data, err := json.Marshal(subjects)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullGrade(g *float64) any {
	if g == nil {
		return nil
	}
	return *g
}

// CreatePerson 创建成员档案
func (s *Store) CreatePerson(ctx context.Context, role model.Role, p *model.Person) error {
	tbl, err := table(role)
	if err != nil {
		return err
	}
	subjects, err := encodeSubjects(p.Subjects)
	if err != nil {
		return err
	}
	query := s.rebind(`INSERT INTO ` + tbl + ` (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`)
	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Email, p.UserName, p.Name, string(p.Gender), p.Bio, p.Department, p.Nationality,
		p.Avatar, p.PasswordHash, p.ResetToken, nullGrade(p.Grade), subjects,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	return s.wrapError(err)
}

func (s *Store) getPersonBy(ctx context.Context, role model.Role, column, value string) (*model.Person, error) {
	tbl, err := table(role)
	if err != nil {
		return nil, err
	}
	query := s.rebind(`SELECT ` + personColumns + ` FROM ` + tbl + ` WHERE ` + column + ` = $1`)
	p, err := scanPerson(s.db.QueryRowContext(ctx, query, value), role)
	if err != nil {
		return nil, s.wrapError(err)
	}
	return p, nil
}

// GetPersonByID 通过 ID 查找成员
func (s *Store) GetPersonByID(ctx context.Context, role model.Role, id string) (*model.Person, error) {
	return s.getPersonBy(ctx, role, "id", id)
}

// GetPersonByEmail 通过邮箱查找成员
func (s *Store) GetPersonByEmail(ctx context.Context, role model.Role, email string) (*model.Person, error) {
	return s.getPersonBy(ctx, role, "email", email)
}

// GetPersonByUserName 通过用户名查找成员
func (s *Store) GetPersonByUserName(ctx context.Context, role model.Role, userName string) (*model.Person, error) {
	return s.getPersonBy(ctx, role, "user_name", userName)
}

// ListPeople 列出角色下所有成员（按创建时间倒序）
func (s *Store) ListPeople(ctx context.Context, role model.Role) ([]*model.Person, error) {
	tbl, err := table(role)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM `+tbl+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := []*model.Person{}
	for rows.Next() {
		p, err := scanPerson(rows, role)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// UpdatePerson 按字段更新成员档案，返回更新后的档案
func (s *Store) UpdatePerson(ctx context.Context, role model.Role, id string, u *model.PersonUpdate) (*model.Person, error) {
	tbl, err := table(role)
	if err != nil {
		return nil, err
	}

	columns, args, err := personSetColumns(u)
	if err != nil {
		return nil, err
	}
	columns = append(columns, "updated_at")
	args = append(args, time.Now().UTC(), id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := s.rebind(`UPDATE ` + tbl + ` SET ` + dbutil.SetClause(columns, 1) +
		fmt.Sprintf(` WHERE id = $%d`, len(args)))
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrapError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, storage.ErrNotFound
	}

	p, err := scanPerson(tx.QueryRowContext(ctx,
		s.rebind(`SELECT `+personColumns+` FROM `+tbl+` WHERE id = $1`), id), role)
	if err != nil {
		return nil, s.wrapError(err)
	}
	return p, s.wrapError(tx.Commit())
}

// personSetColumns 将非 nil 的更新字段转换为列名与参数
func personSetColumns(u *model.PersonUpdate) ([]string, []any, error) {
	var columns []string
	var args []any
	set := func(col string, v any) {
		columns = append(columns, col)
		args = append(args, v)
	}

	if u.Email != nil {
		set("email", *u.Email)
	}
	if u.UserName != nil {
		set("user_name", *u.UserName)
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Gender != nil {
		set("gender", string(*u.Gender))
	}
	if u.Bio != nil {
		set("bio", *u.Bio)
	}
	if u.Department != nil {
		set("department", *u.Department)
	}
	if u.Nationality != nil {
		set("nationality", *u.Nationality)
	}
	if u.Avatar != nil {
		set("avatar", *u.Avatar)
	}
	if u.PasswordHash != nil {
		set("password_hash", *u.PasswordHash)
	}
	if u.Grade != nil {
		set("grade", *u.Grade)
	}
	if u.Subjects != nil {
		subjects, err := encodeSubjects(u.Subjects)
		if err != nil {
			return nil, nil, err
		}
		set("subjects", subjects)
	}
	return columns, args, nil
}

// DeletePerson 删除成员并返回被删除的档案
func (s *Store) DeletePerson(ctx context.Context, role model.Role, id string) (*model.Person, error) {
	tbl, err := table(role)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := scanPerson(tx.QueryRowContext(ctx,
		s.rebind(`SELECT `+personColumns+` FROM `+tbl+` WHERE id = $1`), id), role)
	if err != nil {
		return nil, s.wrapError(err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+tbl+` WHERE id = $1`), id); err != nil {
		return nil, err
	}
	return p, tx.Commit()
}
