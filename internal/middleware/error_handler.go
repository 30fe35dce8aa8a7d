package middleware

import (
	defErrors "errors"

	apiError "dealflow/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandler turns errors attached via c.Error into the JSON error
// response. Anything that is not an APIError becomes a 500 with a generic
// message; the cause is logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *apiError.APIError
		if !defErrors.As(err, &apiErr) {
			apiErr = apiError.Internal(err)
		}

		if apiErr.Status >= 500 {
			log.Error().Err(apiErr.Internal).Str("path", c.Request.URL.Path).Msg(apiErr.Message)
		} else {
			log.Info().Err(apiErr.Internal).Str("path", c.Request.URL.Path).Msg(apiErr.Message)
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
