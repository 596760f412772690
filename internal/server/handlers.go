package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/renderers/html"
	"github.com/goliatone/go-formruntime/pkg/runtime"
	"github.com/goliatone/go-formruntime/pkg/validation"
)

// formMarker is the hidden input identifying a whole-form post.
const formMarker = "_form"

const invalidFormMessage = "Please correct the highlighted fields."

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "forms": s.store.Len()})
}

func (s *Server) handleList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"forms": s.store.Names()})
}

func (s *Server) handleRender(c *gin.Context) {
	form, ok := s.form(c)
	if !ok {
		return
	}
	s.respondRender(c, form, http.StatusOK, c.Query("format"), render.RenderOptions{})
}

func (s *Server) handleState(c *gin.Context) {
	form, ok := s.form(c)
	if !ok {
		return
	}
	s.respondRender(c, form, http.StatusOK, s.json.Name(), render.RenderOptions{})
}

func (s *Server) handleInstance(c *gin.Context) {
	form, ok := s.form(c)
	if !ok {
		return
	}
	id, action := c.Param("id"), c.Param("action")
	if action != "add" && action != "remove" {
		s.fail(c, http.StatusNotFound, fmt.Errorf("server: unknown instance action %q", action))
		return
	}

	var changed bool
	err := form.Do(func(rt *runtime.Container) error {
		if err := s.applyPosted(c, rt); err != nil {
			return err
		}
		var err error
		if action == "add" {
			changed, err = rt.AddInstance(id)
		} else {
			changed, err = rt.RemoveInstance(id)
		}
		return err
	})
	s.metrics.instanceOperation(form.Name(), action, changed, err)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	s.logger.Info().Str("form", form.Name()).Str("id", id).Str("action", action).Bool("changed", changed).Msg("instance operation")
	s.respondMutation(c, form, gin.H{"changed": changed}, "#"+id)
}

func (s *Server) handleField(c *gin.Context) {
	form, ok := s.form(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := c.Request.ParseForm(); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	values := c.Request.PostForm

	err := form.Do(func(rt *runtime.Container) error {
		if raw, ok := values["visible"]; ok {
			visible, err := strconv.ParseBool(raw[0])
			if err != nil {
				return badRequest("visible", err)
			}
			if err := rt.SetVisible(id, visible); err != nil {
				return err
			}
			s.metrics.fieldUpdate(form.Name(), "visible")
		}
		if raw, ok := values["enabled"]; ok {
			enabled, err := strconv.ParseBool(raw[0])
			if err != nil {
				return badRequest("enabled", err)
			}
			if err := rt.SetEnabled(id, enabled); err != nil {
				return err
			}
			s.metrics.fieldUpdate(form.Name(), "enabled")
		}
		if raw, ok := values["value"]; ok {
			item, err := rt.Element(id)
			if err != nil {
				return err
			}
			if err := rt.SetValue(id, parseFieldValue(item, raw[0])); err != nil {
				return err
			}
			s.metrics.fieldUpdate(form.Name(), "value")
		}
		return nil
	})
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	s.respondMutation(c, form, gin.H{}, "#"+id)
}

func (s *Server) handleReset(c *gin.Context) {
	form, ok := s.form(c)
	if !ok {
		return
	}
	err := s.store.Reset(form.Name())
	s.metrics.reload(err)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	s.logger.Info().Str("form", form.Name()).Msg("runtime reset")
	s.respondMutation(c, form, gin.H{"reset": true}, "")
}

func (s *Server) handleValidate(c *gin.Context) {
	form, ok := s.form(c)
	if !ok {
		return
	}

	var result validation.Result
	var data map[string]any
	err := form.Do(func(rt *runtime.Container) error {
		if err := s.applyPosted(c, rt); err != nil {
			return err
		}
		result = validation.ValidateValues(rt.Model())
		data = rt.Data()
		return nil
	})
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	if wantsJSON(c) {
		c.JSON(status, gin.H{"valid": result.Valid, "issues": result.Issues, "data": data})
		return
	}

	options := render.RenderOptions{Errors: result.Errors()}
	if !result.Valid {
		options.FormErrors = []string{invalidFormMessage}
	}
	s.respondRender(c, form, status, "", options)
}

// handleErrors renders the form with server side errors posted as JSON. Keys
// may be field ids or name paths such as "people[1].fullName".
func (s *Server) handleErrors(c *gin.Context) {
	form, ok := s.form(c)
	if !ok {
		return
	}
	var payload map[string][]string
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	var mapping render.ErrorMapping
	_ = form.Do(func(rt *runtime.Container) error {
		mapping = render.MapErrors(rt, payload)
		return nil
	})
	s.respondRender(c, form, http.StatusUnprocessableEntity, c.Query("format"), render.RenderOptions{
		Errors:     mapping.Fields,
		FormErrors: mapping.Form,
	})
}

func (s *Server) form(c *gin.Context) (*Form, bool) {
	form, err := s.store.Get(c.Param("name"))
	if err != nil {
		s.fail(c, http.StatusNotFound, err)
		return nil, false
	}
	return form, true
}

func (s *Server) respondRender(c *gin.Context, form *Form, status int, rendererName string, options render.RenderOptions) {
	if rendererName == "" {
		rendererName = s.negotiate(c)
	}
	renderer, err := s.gen.Renderer(rendererName)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	base := "/forms/" + url.PathEscape(form.Name())
	options.ActionsURL = base
	options.SubmitURL = base + "/validate"
	if options.Theme, err = s.gen.ThemeConfig(c.Query("theme"), c.Query("variant")); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	var out []byte
	err = form.Do(func(rt *runtime.Container) error {
		var renderErr error
		out, renderErr = renderer.Render(c.Request.Context(), rt, options)
		return renderErr
	})
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	s.metrics.render(form.Name(), renderer.Name())
	c.Data(status, renderer.ContentType(), out)
}

// negotiate picks the renderer whose media type best matches the Accept
// header. HTML wins for browsers and clients that send no preference.
func (s *Server) negotiate(c *gin.Context) string {
	registry := s.gen.Registry()
	renderer, err := registry.ForMediaType(c.NegotiateFormat(registry.MediaTypes(html.Name)...))
	if err != nil {
		return ""
	}
	return renderer.Name()
}

// respondMutation answers a state change: JSON clients get the new state,
// browsers are redirected back to the form.
func (s *Server) respondMutation(c *gin.Context, form *Form, body gin.H, fragment string) {
	if !wantsJSON(c) {
		c.Redirect(http.StatusSeeOther, "/forms/"+url.PathEscape(form.Name())+fragment)
		return
	}
	_ = form.Do(func(rt *runtime.Container) error {
		body["state"] = s.json.Snapshot(rt, render.RenderOptions{})
		return nil
	})
	c.JSON(http.StatusOK, body)
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// applyPosted copies the values of a whole-form post into the runtime. Only
// visible and enabled inputs are updated; checkboxes missing from the post are
// unchecked. Values are applied in document order and the walk repeats while
// rules reveal or enable more posted inputs, so the result does not depend on
// whether a field comes before or after the field its rules read.
func (s *Server) applyPosted(c *gin.Context, rt *runtime.Container) error {
	if c.ContentType() != gin.MIMEPOSTForm && c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return badRequest("form", err)
	}
	values := c.Request.PostForm
	if values.Get(formMarker) != rt.ID() {
		return nil
	}

	applied := make(map[string]bool)
	for {
		pending := postedInputs(rt.Children(), values, applied)
		if len(pending) == 0 {
			return nil
		}
		for _, view := range pending {
			item := view.Model()
			applied[item.ID] = true
			raw, posted := values[item.ID]
			var value any
			if item.FieldType == model.FieldTypeCheckbox {
				value = posted && isTruthy(raw[0])
			} else {
				value = parseFieldValue(item, raw[0])
			}
			if err := rt.SetValue(item.ID, value); err != nil {
				return err
			}
		}
	}
}

// postedInputs returns, in document order, the visible and enabled inputs that
// the post carries a value for and that have not been applied yet.
func postedInputs(views []*runtime.View, values url.Values, applied map[string]bool) []*runtime.View {
	var out []*runtime.View
	for _, view := range views {
		if !view.Visible() {
			continue
		}
		item := view.Model()
		if item.FieldType.IsInput() {
			_, posted := values[item.ID]
			if view.Enabled() && !applied[item.ID] && (posted || item.FieldType == model.FieldTypeCheckbox) {
				out = append(out, view)
			}
			continue
		}
		out = append(out, postedInputs(view.Children(), values, applied)...)
	}
	return out
}

func parseFieldValue(item *model.Item, raw string) any {
	trimmed := strings.TrimSpace(raw)
	switch item.FieldType {
	case model.FieldTypeCheckbox:
		return isTruthy(trimmed)
	case model.FieldTypeNumberInput:
		if trimmed == "" {
			return nil
		}
		if n, ok := validation.ToNumber(trimmed); ok {
			return n
		}
		// kept as text so validation reports it
		return trimmed
	default:
		if trimmed == "" {
			return nil
		}
		return trimmed
	}
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

type requestError struct {
	field string
	err   error
}

func (e *requestError) Error() string {
	return fmt.Sprintf("server: invalid %s: %v", e.field, e.err)
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(field string, err error) error {
	return &requestError{field: field, err: err}
}

func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrFormNotFound), errors.Is(err, runtime.ErrFieldNotFound):
		return http.StatusNotFound
	case errors.Is(err, runtime.ErrNotRepeatable), errors.Is(err, runtime.ErrNotInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
