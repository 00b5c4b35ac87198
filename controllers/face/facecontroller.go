package face

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"FACEATTEND/controllers"
	"FACEATTEND/helper"
	"FACEATTEND/service"
)

// RegisterForm is the multipart body of POST /register.
type RegisterForm struct {
	Name  string                `form:"name" binding:"max=255"`
	Email string                `form:"email" binding:"omitempty,email,max=255"`
	Image *multipart.FileHeader `form:"image"`
}

type Controller struct {
	svc *service.Service
	log *logrus.Logger
}

func NewController(svc *service.Service, log *logrus.Logger) *Controller {
	return &Controller{svc: svc, log: log}
}

func (ctl *Controller) RegisterHandler(c *gin.Context) {
	// 1. Bind the form and check the image
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form: " + err.Error()})
		return
	}
	if form.Image == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return
	}

	// 2. Read the upload
	image, err := helper.ReadUpload(form.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. Extract the embedding and save the user
	user, err := ctl.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:  form.Name,
		Email: form.Email,
		Image: image,
	})
	if err != nil {
		controllers.RespondError(c, ctl.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered!", "id": user.Id})
}
