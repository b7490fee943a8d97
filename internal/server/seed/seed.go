// Package seed загружает начальные данные блога из YAML файла.
//
// Каждый раздел (пользователи, категории, теги, посты) загружается только
// если соответствующая таблица пуста, поэтому повторный запуск ничего не меняет.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/auth"
	"github.com/iudanet/blogapi/internal/server/blog"
	"github.com/iudanet/blogapi/internal/server/storage"
	"github.com/iudanet/blogapi/internal/validation"
)

// Data содержимое seed файла
type Data struct {
	Users      []User   `yaml:"users"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
	Posts      []Post   `yaml:"posts"`
}

// User пользователь для регистрации
type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Post пост. Автор задается email, категория и теги именами.
type Post struct {
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Status   string   `yaml:"status"`
	Author   string   `yaml:"author"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

// Validate проверяет seed данные до записи в базу
func (d Data) Validate() error {
	return ozzo.ValidateStruct(&d,
		ozzo.Field(&d.Users, ozzo.By(func(value interface{}) error {
			emails := make([]string, 0, len(d.Users))
			for i, u := range d.Users {
				if err := u.Validate(); err != nil {
					return fmt.Errorf("user %d: %w", i, err)
				}
				emails = append(emails, u.Email)
			}
			if err := ozzo.Validate(emails, validation.UniqueFold); err != nil {
				return fmt.Errorf("email %w", err)
			}
			return nil
		})),
		ozzo.Field(&d.Categories, validation.EachString(ozzo.Required, validation.NotBlank), validation.UniqueFold),
		ozzo.Field(&d.Tags, validation.EachString(ozzo.Required, validation.NotBlank), validation.UniqueFold),
		ozzo.Field(&d.Posts, ozzo.By(func(value interface{}) error {
			for i, p := range d.Posts {
				if err := p.Validate(); err != nil {
					return fmt.Errorf("post %d: %w", i, err)
				}
			}
			return nil
		})),
	)
}

// Validate проверяет пользователя
func (u User) Validate() error {
	return ozzo.ValidateStruct(&u,
		ozzo.Field(&u.Email, validation.EmailRules()...),
		ozzo.Field(&u.Password, validation.PasswordRules()...),
		ozzo.Field(&u.Name, ozzo.Required),
	)
}

// Validate проверяет пост
func (p Post) Validate() error {
	return ozzo.ValidateStruct(&p,
		ozzo.Field(&p.Title, ozzo.Required),
		ozzo.Field(&p.Content, ozzo.Required),
		ozzo.Field(&p.Status, ozzo.Required, ozzo.In(string(models.PostStatusDraft), string(models.PostStatusPublished))),
		ozzo.Field(&p.Author, ozzo.Required),
		ozzo.Field(&p.Category, ozzo.Required),
		ozzo.Field(&p.Tags, validation.EachString(ozzo.Required, validation.NotBlank), validation.UniqueFold),
	)
}

// LoadFile читает и проверяет seed файл
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse разбирает и проверяет seed данные
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed data: %w", err)
	}
	return &data, nil
}

// Registrar регистрирует пользователей
type Registrar interface {
	Register(ctx context.Context, req auth.SignUp) (auth.Identity, error)
}

// Store часть хранилища, нужная для проверки пустоты таблиц и поиска по имени
type Store interface {
	CountUsers(ctx context.Context) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListTags(ctx context.Context) ([]*models.Tag, error)
	GetTagsByNames(ctx context.Context, names []string) ([]*models.Tag, error)
	ListPosts(ctx context.Context, filter storage.PostFilter) ([]*models.Post, error)
}

// Result число созданных записей по разделам
type Result struct {
	Users      int
	Categories int
	Tags       int
	Posts      int
}

// Seeder записывает seed данные через сервисы приложения
type Seeder struct {
	store     Store
	registrar Registrar
	blog      *blog.Service
	logger    *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(store Store, registrar Registrar, blogService *blog.Service, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:     store,
		registrar: registrar,
		blog:      blogService,
		logger:    logger,
	}
}

// Run загружает разделы data, таблицы которых пусты
func (s *Seeder) Run(ctx context.Context, data *Data) (Result, error) {
	var res Result
	var err error

	if res.Users, err = s.seedUsers(ctx, data.Users); err != nil {
		return res, err
	}
	if res.Categories, err = s.seedCategories(ctx, data.Categories); err != nil {
		return res, err
	}
	if res.Tags, err = s.seedTags(ctx, data.Tags); err != nil {
		return res, err
	}
	if res.Posts, err = s.seedPosts(ctx, data.Posts); err != nil {
		return res, err
	}

	s.logger.InfoContext(ctx, "Seed data loaded",
		slog.Int("users", res.Users),
		slog.Int("categories", res.Categories),
		slog.Int("tags", res.Tags),
		slog.Int("posts", res.Posts),
	)

	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context, users []User) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		s.logger.DebugContext(ctx, "Users already present, skipping seed")
		return 0, nil
	}

	for _, u := range users {
		if _, err := s.registrar.Register(ctx, auth.SignUp{
			Email:           u.Email,
			Password:        u.Password,
			ConfirmPassword: u.Password,
			Name:            u.Name,
		}); err != nil {
			return 0, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}

	return len(users), nil
}

func (s *Seeder) seedCategories(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		s.logger.DebugContext(ctx, "Categories already present, skipping seed")
		return 0, nil
	}

	for _, name := range names {
		if _, err := s.blog.CreateCategory(ctx, name); err != nil {
			return 0, fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}

	return len(names), nil
}

func (s *Seeder) seedTags(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	existing, err := s.store.ListTags(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tags: %w", err)
	}
	if len(existing) > 0 {
		s.logger.DebugContext(ctx, "Tags already present, skipping seed")
		return 0, nil
	}

	created, err := s.blog.CreateTags(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("failed to seed tags: %w", err)
	}

	return len(created), nil
}

func (s *Seeder) seedPosts(ctx context.Context, posts []Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	existing, err := s.store.ListPosts(ctx, storage.PostFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to list posts: %w", err)
	}
	if len(existing) > 0 {
		s.logger.DebugContext(ctx, "Posts already present, skipping seed")
		return 0, nil
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryIDs[strings.ToLower(c.Name)] = c.ID
	}

	for _, p := range posts {
		author, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(p.Author)))
		if err != nil {
			return 0, fmt.Errorf("failed to find author %s of post %q: %w", p.Author, p.Title, err)
		}

		categoryID, ok := categoryIDs[strings.ToLower(p.Category)]
		if !ok {
			return 0, fmt.Errorf("unknown category %s in post %q", p.Category, p.Title)
		}

		tags, err := s.store.GetTagsByNames(ctx, p.Tags)
		if err != nil {
			return 0, fmt.Errorf("failed to find tags of post %q: %w", p.Title, err)
		}
		if len(tags) != len(p.Tags) {
			return 0, fmt.Errorf("unknown tags in post %q", p.Title)
		}
		tagIDs := make([]string, 0, len(tags))
		for _, t := range tags {
			tagIDs = append(tagIDs, t.ID)
		}

		if _, err := s.blog.CreatePost(ctx, author.ID, blog.PostInput{
			Title:      p.Title,
			Content:    p.Content,
			CategoryID: categoryID,
			Status:     models.PostStatus(p.Status),
			TagIDs:     tagIDs,
		}); err != nil {
			return 0, fmt.Errorf("failed to seed post %q: %w", p.Title, err)
		}
	}

	return len(posts), nil
}
