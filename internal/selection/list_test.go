package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_AddPreservesOrder(t *testing.T) {
	var l List[Title]
	var err error
	for _, ti := range []Title{{ID: 12, Name: "Ingeniero de Software"}, {ID: 3, Name: "Licenciado en Física"}, {ID: 7, Name: "Magíster"}} {
		l, err = l.Add(ti)
		require.NoError(t, err)
	}

	ids := []int{}
	for _, ti := range l.Payload() {
		ids = append(ids, ti.ID)
	}
	assert.Equal(t, []int{12, 3, 7}, ids)
}

func TestList_AddDuplicateRejected(t *testing.T) {
	l, err := NewList(Title{ID: 12, Name: "Ingeniero de Software"})
	require.NoError(t, err)

	next, err := l.Add(Title{ID: 12, Name: "Ingeniero de Software"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, "Este título ya ha sido seleccionado.", Notice(err))
	assert.Equal(t, l.Payload(), next.Payload())
	assert.Equal(t, 1, next.Len())
}

func TestList_AddDoesNotAliasReceiver(t *testing.T) {
	base, err := NewList(Title{ID: 1, Name: "A"}, Title{ID: 2, Name: "B"})
	require.NoError(t, err)

	left, err := base.Add(Title{ID: 3, Name: "C"})
	require.NoError(t, err)
	right, err := base.Add(Title{ID: 4, Name: "D"})
	require.NoError(t, err)

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, 3, left.Payload()[2].ID)
	assert.Equal(t, 4, right.Payload()[2].ID)
}

func TestList_RemoveAbsentIsNoop(t *testing.T) {
	l, err := NewList(Title{ID: 1, Name: "A"}, Title{ID: 2, Name: "B"})
	require.NoError(t, err)

	next := l.Remove(99)
	assert.Equal(t, l.Payload(), next.Payload())

	next = l.Remove(1)
	assert.Equal(t, []Title{{ID: 2, Name: "B"}}, next.Payload())
	assert.Equal(t, 2, l.Len())
}

func TestList_PayloadIsPureAndIdempotent(t *testing.T) {
	l, err := NewList(Title{ID: 1, Name: "A"}, Title{ID: 2, Name: "B"})
	require.NoError(t, err)

	first := l.Payload()
	first[0].Name = "mutated"
	second := l.Payload()

	assert.Equal(t, "A", second[0].Name)
	assert.Equal(t, l.Payload(), second)
}

func TestList_EmptyPayloadIsNotNil(t *testing.T) {
	var l List[Criterion]
	assert.NotNil(t, l.Payload())
	assert.Empty(t, l.Payload())
	assert.Equal(t, 0, l.Clear().Len())
}

func TestCriterion_GenderScenario(t *testing.T) {
	gender := Criterion{
		ID:      4,
		Name:    "Género",
		Options: []string{"Masculino", "Femenino", "Otro"},
	}

	var l List[Criterion]
	l, err := l.Add(gender)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Equal(t, "Seleccione un criterio y complete la prioridad antes de agregarlo.", Notice(err))
	assert.Equal(t, 0, l.Len())

	gender.Priority = PriorityHigh
	gender.Value = "Femenino"
	l, err = l.Add(gender)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "Género = Femenino", l.Entries()[0].Label)

	_, err = l.Add(gender)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, "Este criterio ya ha sido seleccionado.", Notice(err))
}

func TestCriterion_Validate(t *testing.T) {
	tests := []struct {
		name      string
		criterion Criterion
		wantErr   error
		field     string
	}{
		{"valid free value", Criterion{ID: 1, Name: "Experiencia", Priority: PriorityLow}, nil, ""},
		{"missing id", Criterion{Priority: PriorityHigh}, ErrMissingInput, "criterio"},
		{"missing priority", Criterion{ID: 1}, ErrMissingInput, "prioridad"},
		{"priority out of range", Criterion{ID: 1, Priority: 7}, ErrInvalidValue, "prioridad"},
		{"options need value", Criterion{ID: 5, Options: []string{"Casado", "Soltero"}, Priority: PriorityMedium}, ErrMissingInput, "valor"},
		{"value outside options", Criterion{ID: 5, Options: []string{"Casado", "Soltero"}, Value: "Otro", Priority: PriorityMedium}, ErrInvalidValue, "valor"},
		{"value inside options", Criterion{ID: 5, Options: []string{"Casado", "Soltero"}, Value: "Casado", Priority: PriorityMedium}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criterion.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestLanguage_Validate(t *testing.T) {
	assert.NoError(t, Language{ID: 1, Name: "Inglés", Oral: "Intermedio", Written: "Avanzado"}.Validate())
	assert.ErrorIs(t, Language{ID: 1, Oral: "Intermedio"}.Validate(), ErrMissingInput)
	assert.ErrorIs(t, Language{ID: 1, Oral: "Fluido", Written: "Basico"}.Validate(), ErrInvalidValue)
}

func TestExperience_ValidateAndDescribe(t *testing.T) {
	exp := Experience{ID: -1, Company: "Proa", Position: "Analista", Area: "Tecnología", Start: "2020-01-01", End: "2022-01-01"}
	require.NoError(t, exp.Validate())
	assert.True(t, exp.Draft())

	entry := Describe(exp)
	assert.Equal(t, CategoryExperience, entry.Category)
	assert.Equal(t, "Analista en Proa", entry.Label)
	assert.Equal(t, "Tecnología", entry.Metadata["area"])

	exp.Company = "  "
	err := exp.Validate()
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, "Complete el campo empresa antes de agregarlo.", Notice(err))

	assert.ErrorIs(t, Experience{Company: "x"}.Validate(), ErrMissingInput)
}

func TestNotice(t *testing.T) {
	assert.Empty(t, Notice(nil))
	assert.Equal(t, "boom", Notice(errors.New("boom")))
	err := invalid(CategoryCriterion, 5, "valor", "Otro")
	assert.Equal(t, `El valor "Otro" no es válido para valor.`, Notice(err))
}

func TestLanguageLevels_WireValues(t *testing.T) {
	assert.Equal(t, []string{"Basico", "Intermedio", "Avanzado", "Nativo"}, LanguageLevels)
	assert.Equal(t, "Básico", LanguageLevelLabel("Basico"))
	assert.Equal(t, "Avanzado", LanguageLevelLabel("Avanzado"))
	assert.ErrorIs(t, Language{ID: 1, Oral: "Básico", Written: "Basico"}.Validate(), ErrInvalidValue)
}

func TestList_ReplaceKeepsPosition(t *testing.T) {
	a := Experience{ID: 4, Company: "Proa", Position: "Analista", Area: "TI", Start: "2019-01-01", End: "2020-01-01"}
	b := Experience{ID: -1, Company: "Acme", Position: "Soporte", Area: "TI", Start: "2021-01-01", End: "2022-01-01"}
	l, err := NewList(a, b)
	require.NoError(t, err)

	edited := a
	edited.Position = "Jefe de proyecto"
	next, err := l.Replace(edited)
	require.NoError(t, err)
	assert.Equal(t, []Experience{edited, b}, next.Payload())
	assert.Equal(t, "Analista", l.Payload()[0].Position)

	got, ok := next.Get(4)
	require.True(t, ok)
	assert.Equal(t, "Jefe de proyecto", got.Position)
	_, ok = next.Get(99)
	assert.False(t, ok)

	invalidEdit := a
	invalidEdit.Company = ""
	same, err := next.Replace(invalidEdit)
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, next.Payload(), same.Payload())

	c := Experience{ID: -2, Company: "Beta", Position: "QA", Area: "TI", Start: "2022-02-01", End: "2023-01-01"}
	appended, err := next.Replace(c)
	require.NoError(t, err)
	assert.Equal(t, 3, appended.Len())
	assert.Equal(t, -2, appended.Payload()[2].ID)
}
