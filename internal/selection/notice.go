package selection

import (
	"errors"
	"fmt"
)

// Notice returns the user-facing message for an error returned by List.Add.
// It returns the empty string for nil.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if !errors.As(err, &se) {
		return err.Error()
	}

	switch {
	case errors.Is(err, ErrDuplicate):
		switch se.Category {
		case CategoryTitle:
			return "Este título ya ha sido seleccionado."
		case CategoryCriterion:
			return "Este criterio ya ha sido seleccionado."
		case CategoryLanguage:
			return "Este idioma ya ha sido agregado."
		default:
			return "Este elemento ya ha sido agregado."
		}
	case errors.Is(err, ErrMissingInput):
		if se.Category == CategoryCriterion && (se.Field == "criterio" || se.Field == "prioridad") {
			return "Seleccione un criterio y complete la prioridad antes de agregarlo."
		}
		return fmt.Sprintf("Complete el campo %s antes de agregarlo.", se.Field)
	case errors.Is(err, ErrInvalidValue):
		return fmt.Sprintf("El valor %q no es válido para %s.", se.Value, se.Field)
	}
	return err.Error()
}
