package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"go-lms/internal/common/validation"
	"go-lms/internal/config"
	"go-lms/internal/database"
	"go-lms/internal/features/access"
	"go-lms/internal/features/audit"
	"go-lms/internal/features/lesson"
	"go-lms/internal/features/module"
	"go-lms/internal/features/role"
	"go-lms/internal/features/section"
	"go-lms/internal/features/user"
	"go-lms/internal/logger"
	"go-lms/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type seedLesson struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	ContentType     string `json:"content_type"`
	MediaURL        string `json:"media_url"`
	DurationMinutes int    `json:"duration_minutes"`
}

type seedSection struct {
	Title   string       `json:"title"`
	Lessons []seedLesson `json:"lessons"`
}

type seedModule struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Sections    []seedSection `json:"sections"`
}

type seedUser struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	RoleNames []string `json:"roles"`
}

// Seed runs the database seeding
func Seed(
	lc fx.Lifecycle,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	moduleRepo module.ModuleRepository,
	sectionRepo section.SectionRepository,
	lessonRepo lesson.LessonRepository,
	accessService access.RoleAccessService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				logger.Info("Starting database seeding from JSON...")

				// Helper to read JSON
				readJSON := func(path string, v interface{}) error {
					b, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					return json.Unmarshal(b, v)
				}

				// Data Paths (Assuming running from backend root)
				rolesPath := "cmd/seed/data/roles.json"
				usersPath := "cmd/seed/data/users.json"
				modulesPath := "cmd/seed/data/modules.json"

				// 1. Seed Roles
				var roles []role.Role
				if err := readJSON(rolesPath, &roles); err != nil {
					logger.Fatal("Failed to read roles.json", zap.Error(err))
				}
				roleIDs := make(map[string]uuid.UUID)
				for _, r := range roles {
					if existing, err := roleRepo.FindByName(ctx, r.Name); err == nil {
						logger.Info("Role exists, skipping", zap.String("role", r.Name))
						roleIDs[r.Name] = existing.ID
						continue
					}
					r.ID = uuid.New()
					if err := roleRepo.Create(ctx, &r); err != nil {
						logger.Error("Failed to create role", zap.String("role", r.Name), zap.Error(err))
						continue
					}
					logger.Info("Role created", zap.String("role", r.Name))
					roleIDs[r.Name] = r.ID
				}

				// 2. Seed Users
				var users []seedUser
				if err := readJSON(usersPath, &users); err != nil {
					logger.Error("Failed to read users.json", zap.Error(err))
				}
				for _, u := range users {
					if _, err := userRepo.FindByUsername(ctx, u.Username); err == nil {
						logger.Info("User exists, skipping", zap.String("username", u.Username))
						continue
					}
					hash, err := utils.HashPassword(u.Password)
					if err != nil {
						logger.Error("Failed to hash password", zap.String("username", u.Username), zap.Error(err))
						continue
					}
					var ids []uuid.UUID
					for _, name := range u.RoleNames {
						if id, ok := roleIDs[name]; ok {
							ids = append(ids, id)
						} else {
							logger.Warn("Role found in user definition but not in DB", zap.String("role", name))
						}
					}
					newUser := &user.User{
						ID:           uuid.New(),
						Username:     u.Username,
						Email:        u.Email,
						PasswordHash: hash,
						IsActive:     true,
					}
					if err := userRepo.Create(ctx, newUser, ids); err != nil {
						logger.Error("Failed to create user", zap.String("username", u.Username), zap.Error(err))
						continue
					}
					logger.Info("User created", zap.String("username", u.Username))
				}

				// 3. Seed Modules with their sections and lessons
				var modules []seedModule
				if err := readJSON(modulesPath, &modules); err != nil {
					logger.Fatal("Failed to read modules.json", zap.Error(err))
				}
				existing, err := moduleRepo.List(ctx, module.ModuleFilter{IncludeInactive: true})
				if err != nil {
					logger.Fatal("Failed to list modules", zap.Error(err))
				}
				titles := make(map[string]bool, len(existing))
				for _, m := range existing {
					titles[m.Title] = true
				}
				for i, m := range modules {
					if titles[m.Title] {
						logger.Info("Module exists, skipping", zap.String("module", m.Title))
						continue
					}
					if err := seedContent(ctx, moduleRepo, sectionRepo, lessonRepo, m, i); err != nil {
						logger.Error("Failed to create module", zap.String("module", m.Title), zap.Error(err))
						continue
					}
					logger.Info("Module created", zap.String("module", m.Title), zap.Int("sections", len(m.Sections)))
				}

				// 4. Default access rules for every role on every module
				result, err := accessService.SeedDefaults(ctx)
				if err != nil {
					logger.Error("Failed to seed access rules", zap.Error(err))
					return
				}
				logger.Info("Access rules seeded",
					zap.Int("created", result.Created),
					zap.Int("skipped", result.Skipped),
					zap.Int("failed", result.Failed))

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func seedContent(
	ctx context.Context,
	moduleRepo module.ModuleRepository,
	sectionRepo section.SectionRepository,
	lessonRepo lesson.LessonRepository,
	m seedModule,
	order int,
) error {
	mod := &module.Module{
		ID:          uuid.New(),
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		SortOrder:   order,
		IsActive:    true,
	}
	if err := moduleRepo.Create(ctx, mod); err != nil {
		return err
	}
	for si, s := range m.Sections {
		sec := &section.Section{
			ID:        uuid.New(),
			ModuleID:  mod.ID,
			Title:     s.Title,
			SortOrder: si,
			IsActive:  true,
		}
		if err := sectionRepo.Create(ctx, sec); err != nil {
			return err
		}
		for li, l := range s.Lessons {
			contentType := l.ContentType
			if contentType == "" {
				contentType = lesson.ContentText
			}
			if err := lessonRepo.Create(ctx, &lesson.Lesson{
				ID:              uuid.New(),
				SectionID:       sec.ID,
				Title:           l.Title,
				Content:         l.Content,
				ContentType:     contentType,
				MediaURL:        l.MediaURL,
				DurationMinutes: l.DurationMinutes,
				SortOrder:       li,
				IsActive:        true,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			database.NewPostgres,
			logger.NewLogger,
			validation.NewValidator,
			audit.NewAuditRepository,
			audit.NewAuditService,
			role.NewRoleRepository,
			user.NewUserRepository,
			module.NewModuleRepository,
			section.NewSectionRepository,
			lesson.NewLessonRepository,
			access.NewRuleRepository,
			access.NewHierarchyRepository,
			access.NewResolver,
			access.NewRoleAccessService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
