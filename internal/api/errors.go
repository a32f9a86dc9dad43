package api

import "github.com/gofiber/fiber/v2"

// apiError is the common shape behind the error taxonomy: a message and
// an HTTP status to surface. Every error body, for GETs and mutating
// endpoints alike, carries success:false (see writeError).
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

// ClientError covers malformed/missing bodies, unknown effect or preset
// ids, and out-of-range values: 4xx, client's fault.
func ClientError(msg string) error {
	return &apiError{status: fiber.StatusBadRequest, message: msg}
}

// NotFoundError covers an unknown effect class or preset id.
func NotFoundError(msg string) error {
	return &apiError{status: fiber.StatusNotFound, message: msg}
}

// StateError covers a request that is well-formed but invalid given the
// current layout or state, e.g. a hex-only effect on a scale layout.
func StateError(msg string) error {
	return &apiError{status: fiber.StatusBadRequest, message: msg}
}

// PersistenceError covers a failed blob read/write; in-memory state is
// left intact, so this always surfaces as 500 for mutating requests.
func PersistenceError(msg string) error {
	return &apiError{status: fiber.StatusInternalServerError, message: msg}
}

// writeError renders any error as {error, success:false} at the
// matching status code, falling back to 500 for an error this package
// didn't construct.
func writeError(c *fiber.Ctx, err error) error {
	if ae, ok := err.(*apiError); ok {
		return c.Status(ae.status).JSON(fiber.Map{"error": ae.message, "success": false})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "success": false})
}
