// identity.go
package identity

import (
	"encoding/json"
	"strconv"
)

// Normalize lleva cualquier forma de identificador de usuario a un string
// canónico. Los call sites mandan de todo: el string directo, el objeto de
// usuario entero (con _id o id), el número crudo, o el payload del token.
// Todo filtro de consulta y chequeo de ownership pasa por acá.
//
// Nunca falla: si la forma no se reconoce devuelve ok=false.
func Normalize(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	case map[string]interface{}:
		// Convenciones de clave primaria: "_id" (Mongo) o "id" (token/API)
		if inner, ok := val["_id"]; ok {
			return Normalize(inner)
		}
		if inner, ok := val["id"]; ok {
			return Normalize(inner)
		}
		return "", false
	case json.Number:
		return val.String(), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}
