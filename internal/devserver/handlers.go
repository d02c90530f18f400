package devserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/response"
)

type staffLoginPayload struct {
	Correo   string `json:"correo" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type studentLoginPayload struct {
	Cedula   string `json:"cedula" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerPayload struct {
	Cedula   string `json:"cedula" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type postPayload struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image" binding:"omitempty,startswith=data:image/"`
}

type stagePayload struct {
	Name      models.StageName `json:"etapa" binding:"required"`
	StartDate time.Time        `json:"fecha_inicio" binding:"required"`
	EndDate   time.Time        `json:"fecha_fin" binding:"required"`
	Panel     []string         `json:"jurado" binding:"required,min=1,max=3,unique,dive,required"`
}

func invalid(c *gin.Context, err error, message string) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
}

func (s *Server) staffLogin(c *gin.Context) {
	var req staffLoginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err, "Correo y contraseña son obligatorios")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Correo))
	a, err := s.store.authenticate(func(a *account) bool {
		return a.Role.IsStaff() && strings.EqualFold(a.Email, email)
	}, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	s.respondWithToken(c, http.StatusOK, a)
}

func (s *Server) studentLogin(c *gin.Context) {
	var req studentLoginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err, "Cédula y contraseña son obligatorias")
		return
	}
	cedula := strings.TrimSpace(req.Cedula)
	a, err := s.store.authenticate(func(a *account) bool {
		return !a.Role.IsStaff() && a.Cedula == cedula
	}, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	s.respondWithToken(c, http.StatusOK, a)
}

func (s *Server) register(c *gin.Context) {
	var req registerPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err, "Datos de registro inválidos")
		return
	}
	a, err := s.store.addAccount(account{
		Cedula: strings.TrimSpace(req.Cedula),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Role:   models.RoleStudent,
	}, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	s.respondWithToken(c, http.StatusCreated, a)
}

func (s *Server) respondWithToken(c *gin.Context, status int, a *account) {
	token, err := s.tokens.issue(a)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token"))
		return
	}
	user := models.AuthUser{
		ID:           a.ID,
		Cedula:       a.Cedula,
		Role:         a.Role,
		ProfileImage: a.ProfileImage,
		CreatedAt:    a.CreatedAt,
	}
	if a.Role.IsStaff() {
		user.Correo = a.Email
	} else {
		user.Email = a.Email
	}
	response.JSON(c, status, models.AuthResponse{Token: token, User: user})
}

func (s *Server) listPosts(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Message(c, http.StatusBadRequest, "Página inválida")
			return
		}
		page = n
	}
	posts, total := s.store.postPage(page, s.cfg.PageSize)
	response.JSON(c, http.StatusOK, gin.H{
		"posts":       posts,
		"totalPages":  total,
		"currentPage": page,
	})
}

func (s *Server) getPost(c *gin.Context) {
	post, ok := s.store.post(c.Param("id"))
	if !ok {
		response.Message(c, http.StatusNotFound, "Post no encontrado")
		return
	}
	response.JSON(c, http.StatusOK, post)
}

func (s *Server) createPost(c *gin.Context) {
	var req postPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err, "Título, descripción e imagen son obligatorios")
		return
	}
	title, description, ok := s.cleanPostText(req)
	if !ok || req.Image == "" {
		response.Message(c, http.StatusBadRequest, "Título, descripción e imagen son obligatorios")
		return
	}
	response.Created(c, s.store.createPost(title, description, req.Image))
}

func (s *Server) updatePost(c *gin.Context) {
	var req postPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err, "Título y descripción son obligatorios")
		return
	}
	title, description, ok := s.cleanPostText(req)
	if !ok {
		response.Message(c, http.StatusBadRequest, "Título y descripción son obligatorios")
		return
	}
	post, found := s.store.updatePost(c.Param("id"), title, description)
	if !found {
		response.Message(c, http.StatusNotFound, "Post no encontrado")
		return
	}
	response.JSON(c, http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	if !s.store.deletePost(c.Param("id")) {
		response.Message(c, http.StatusNotFound, "Post no encontrado")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Post eliminado"})
}

// cleanPostText strips markup from user-provided text.
func (s *Server) cleanPostText(req postPayload) (string, string, bool) {
	title := strings.TrimSpace(s.sanitizer.Sanitize(req.Title))
	description := strings.TrimSpace(s.sanitizer.Sanitize(req.Description))
	return title, description, title != "" && description != ""
}

func (s *Server) listStages(c *gin.Context) {
	response.JSON(c, http.StatusOK, s.store.listStages())
}

func (s *Server) createStage(c *gin.Context) {
	var req stagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err, "Todos los campos son obligatorios")
		return
	}
	if !req.Name.Valid() {
		response.Message(c, http.StatusBadRequest, "Etapa inválida")
		return
	}
	if req.EndDate.Before(req.StartDate) {
		response.Message(c, http.StatusBadRequest, "La fecha de fin no puede ser anterior a la de inicio")
		return
	}
	for _, id := range req.Panel {
		if !s.store.isProfessor(id) {
			response.Message(c, http.StatusBadRequest, "Jurado inválido")
			return
		}
	}
	stage, err := s.store.createStage(models.StageRequest{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Panel:     req.Panel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stage)
}

func (s *Server) deleteStage(c *gin.Context) {
	if !s.store.deleteStage(models.StageName(c.Param("name"))) {
		response.Message(c, http.StatusNotFound, "Etapa no encontrada")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Etapa eliminada"})
}

func (s *Server) listProfessors(c *gin.Context) {
	response.JSON(c, http.StatusOK, s.store.professors())
}

func (s *Server) staffProfile(c *gin.Context) {
	a, ok := s.store.accountByCedula(c.Param("cedula"), true)
	if !ok {
		response.Message(c, http.StatusNotFound, "Staff no encontrado")
		return
	}
	response.JSON(c, http.StatusOK, models.StaffProfile{
		ID:         a.ID,
		GivenName:  a.GivenName,
		FamilyName: a.FamilyName,
		Cedula:     a.Cedula,
		Email:      a.Email,
		Role:       a.Role,
		Active:     true,
	})
}

func (s *Server) studentProfile(c *gin.Context) {
	a, ok := s.store.accountByCedula(c.Param("cedula"), false)
	if !ok {
		response.Message(c, http.StatusNotFound, "Estudiante no encontrado")
		return
	}
	response.JSON(c, http.StatusOK, models.StudentProfile{
		ID:         a.ID,
		GivenName:  a.GivenName,
		FamilyName: a.FamilyName,
		Cedula:     a.Cedula,
		Email:      a.Email,
		BirthDate:  a.BirthDate,
		Phone:      a.Phone,
		Address:    a.Address,
		Sex:        a.Sex,
		Active:     true,
	})
}
