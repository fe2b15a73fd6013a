package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"trustbyte/domain"
	"trustbyte/storage"
)

const (
	maxRequestBody = 64 * 1024 // 64 KiB

	bcryptCost = 10

	headerIdempotencyKey = "Idempotency-Key"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, issuer TokenIssuer, deduper Deduper, logger *log.Logger) {
	e.GET("/ping", ping())
	e.GET("/healthz", healthz())

	e.POST("/auth/register", registerUser(store))
	e.POST("/auth/login", login(store, issuer))

	e.POST("/api/alltasks", allTasks(store, auth, logger))
	e.POST("/api/addtask", addTask(store, auth, deduper))
	// The original service never authenticated task updates; that behavior is
	// kept for wire compatibility.
	e.POST("/api/updatetask", updateTask(store))
	e.POST("/api/deletetask", deleteTask(store, auth))
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	envelope
	JWTToken string `json:"jwtToken"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type allTasksRequest struct {
	User string `json:"user"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type taskResponse struct {
	envelope
	Task domain.Task `json:"task"`
}

type deleteTaskRequest struct {
	ID primitive.ObjectID `json:"_id"`
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, maxRequestBody)
	return sonic.ConfigStd.NewDecoder(lr).Decode(dst)
}

func ping() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "Pong")
	}
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
}

func registerUser(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Name == "" || req.Email == "" || req.Password == "" {
			return fail(c, http.StatusBadRequest, "Name, email, and password are required")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			c.Logger().Error(err)
			return fail(c, http.StatusInternalServerError, "Server error")
		}

		err = store.CreateUser(c.Request().Context(), domain.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
		})
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return fail(c, http.StatusBadRequest, "User already exists")
		}
		if err != nil {
			c.Logger().Error(err)
			return fail(c, http.StatusInternalServerError, "Server error")
		}

		return c.JSON(http.StatusCreated, envelope{Success: true, Message: "User registered successfully"})
	}
}

func login(store Storage, issuer TokenIssuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" {
			return fail(c, http.StatusBadRequest, "Email and password are required")
		}

		user, err := store.UserByEmail(c.Request().Context(), req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			// Same message as a wrong password so accounts cannot be enumerated.
			return fail(c, http.StatusUnauthorized, "Invalid credentials")
		}
		if err != nil {
			c.Logger().Error(err)
			return fail(c, http.StatusInternalServerError, "Server error")
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return fail(c, http.StatusUnauthorized, "Invalid credentials")
		}

		token, err := issuer.IssueToken(user, time.Now())
		if err != nil {
			c.Logger().Error(err)
			return fail(c, http.StatusInternalServerError, "Server error")
		}

		return c.JSON(http.StatusOK, loginResponse{
			envelope: envelope{Success: true, Message: "User logged in successfully"},
			JWTToken: token,
			Email:    user.Email,
			Name:     user.Name,
		})
	}
}

func allTasks(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newTaskListMetrics(logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		identity, authErr := auth.IdentityFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = fail(c, http.StatusUnauthorized, authErr.Error())
			return err
		}

		var req allTasksRequest
		if decodeErr := decodeBody(c, &req); decodeErr != nil {
			metrics.SetErrorStage("decode_request")
			err = fail(c, http.StatusBadRequest, "invalid body")
			return err
		}
		if req.User != "" && !strings.EqualFold(req.User, identity.Email) {
			metrics.SetErrorStage("owner_mismatch")
			err = fail(c, http.StatusBadRequest, "user does not match token")
			return err
		}

		fetchStart := time.Now()
		tasks, fetchErr := store.FetchTasks(c.Request().Context(), identity.Email)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = fail(c, http.StatusInternalServerError, "Server error")
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func addTask(store Storage, auth Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		identity, err := auth.IdentityFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return fail(c, http.StatusUnauthorized, err.Error())
		}

		var task domain.Task
		if err := decodeBody(c, &task); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		task.ID = primitive.NilObjectID
		task.User = identity.Email
		if err := task.Validate(); err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}

		idemKey := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
		if idemKey != "" && deduper != nil {
			added, err := deduper.Add(ctx, identity.Email, idemKey)
			if err != nil {
				c.Logger().Error(err)
				return fail(c, http.StatusInternalServerError, "Server error")
			}
			if !added {
				return fail(c, http.StatusConflict, "duplicate request")
			}
		}

		created, err := store.InsertTask(ctx, task)
		if err != nil {
			if idemKey != "" && deduper != nil {
				if rerr := deduper.Remove(ctx, identity.Email, idemKey); rerr != nil {
					c.Logger().Errorf("dedupe rollback failed: %v", rerr)
				}
			}
			c.Logger().Error(err)
			return fail(c, http.StatusInternalServerError, "Server error")
		}

		return c.JSON(http.StatusCreated, taskResponse{
			envelope: envelope{Success: true},
			Task:     created,
		})
	}
}

func updateTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		var task domain.Task
		if err := decodeBody(c, &task); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if task.ID.IsZero() {
			return fail(c, http.StatusBadRequest, "task id is required")
		}
		if err := task.Validate(); err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}

		found, err := store.ReplaceTask(c.Request().Context(), task)
		if err != nil {
			c.Logger().Error(err)
			return fail(c, http.StatusInternalServerError, "Server error")
		}
		if !found {
			return fail(c, http.StatusNotFound, "Task not found")
		}

		return c.JSON(http.StatusOK, taskResponse{
			envelope: envelope{Success: true},
			Task:     task,
		})
	}
}

func deleteTask(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := auth.IdentityFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return fail(c, http.StatusUnauthorized, err.Error())
		}

		var req deleteTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if req.ID.IsZero() {
			return fail(c, http.StatusBadRequest, "task id is required")
		}

		found, err := store.DeleteTask(c.Request().Context(), req.ID, identity.Email)
		if err != nil {
			c.Logger().Error(err)
			return fail(c, http.StatusInternalServerError, "Server error")
		}
		if !found {
			return fail(c, http.StatusNotFound, "Task not found")
		}

		return c.JSON(http.StatusOK, envelope{Success: true})
	}
}
