package workflow

import (
	"fmt"
	"strings"

	"github.com/chaski/registry/internal/model"
)

// FieldKind tells how a form field is encoded in the record.
type FieldKind int

const (
	// Text fields are sent as entered.
	Text FieldKind = iota
	// Link fields hold record ids of another table and are sent as an array.
	Link
)

// Field describes one input of a form.
type Field struct {
	Name string
	Kind FieldKind
	// Required is the message shown when the field is blank; empty means
	// the field is optional.
	Required string
	Default  string
}

// Entity describes a registry form: where it saves, what it asks for and
// what it tells the user.
type Entity struct {
	Name       string
	Table      model.Table
	Fields     []Field
	Attachment string
	// UploadWarning is shown when the image upload fails and the record is
	// saved without it. A %s verb receives the upload error.
	UploadWarning string
	Success       string
	// FailurePrefix precedes the gateway's reason when the save fails.
	FailurePrefix string
}

// Field returns the definition of name.
func (e Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (e Entity) uploadWarning(err error) string {
	if strings.Contains(e.UploadWarning, "%s") {
		return fmt.Sprintf(e.UploadWarning, ErrorMessage(err))
	}
	return e.UploadWarning
}

func (e Entity) failure(err error) string {
	return e.FailurePrefix + ": " + ErrorMessage(err)
}

const pendingApproval = "pendiente"

var (
	Evento = Entity{
		Name:  "evento",
		Table: model.TableEventos,
		Fields: []Field{
			{Name: "nombre_evento", Required: "El nombre del evento es obligatorio"},
			{Name: "descripcion"},
			{Name: "fecha", Required: "La fecha del evento es obligatoria"},
			{Name: "ubicacion"},
			{Name: "tipo_evento", Required: "El tipo de evento es obligatorio"},
			{Name: "organizador"},
			{Name: "pais"},
			{Name: "clasificacion"},
			{Name: "estado_aprobacion", Default: pendingApproval},
		},
		Attachment:    "afiche_url",
		UploadWarning: "Error al subir el afiche: %s",
		Success:       "¡Evento registrado exitosamente!",
		FailurePrefix: "Error al registrar el evento",
	}

	Equipo = Entity{
		Name:  "equipo",
		Table: model.TableEquipos,
		Fields: []Field{
			{Name: "nombre_equipo", Required: "El nombre del equipo es obligatorio"},
			{Name: "institucion", Required: "La institución es obligatoria"},
			{Name: "ciudad"},
			{Name: "pais"},
			{Name: "categoria"},
			{Name: "descripcion"},
			{Name: "estado_aprobacion", Default: pendingApproval},
		},
		Attachment:    "logo_url",
		UploadWarning: "Error al subir el logo: %s",
		Success:       "¡Equipo registrado exitosamente!",
		FailurePrefix: "Error al registrar el equipo",
	}

	Miembro = Entity{
		Name:  "miembro",
		Table: model.TableMiembros,
		Fields: []Field{
			{Name: "nombre", Required: "El nombre del miembro es obligatorio"},
			{Name: "rol"},
			{Name: "equipo_id", Kind: Link, Required: "Debes seleccionar un equipo"},
			{Name: "categoria"},
			{Name: "descripcion"},
		},
		Attachment:    "foto_url",
		UploadWarning: "Error al subir la foto. El miembro se registrará sin imagen.",
		Success:       "¡Miembro registrado exitosamente!",
		FailurePrefix: "Error al registrar el miembro",
	}

	Empresa = Entity{
		Name:  "empresa",
		Table: model.TableEmpresas,
		Fields: []Field{
			{Name: "nombre_empresa", Required: "El nombre de la empresa es obligatorio"},
			{Name: "descripcion"},
			{Name: "ciudad"},
			{Name: "pais"},
			{Name: "contacto"},
			{Name: "whatsapp"},
			{Name: "web"},
			{Name: "telefono"},
		},
		Attachment:    "logo_url",
		UploadWarning: "Error: %s",
		Success:       "¡Empresa guardada correctamente!",
		FailurePrefix: "Error al guardar empresa",
	}

	Noticia = Entity{
		Name:  "noticia",
		Table: model.TableNoticias,
		Fields: []Field{
			{Name: "titulo", Required: "El título de la noticia es obligatorio"},
			{Name: "descripcion"},
			{Name: "fecha", Required: "La fecha es obligatoria"},
			{Name: "fuente"},
			{Name: "estado_aprobacion", Default: pendingApproval},
		},
		Attachment:    "imagen_url",
		UploadWarning: "Error al subir la imagen. La noticia se registrará sin imagen.",
		Success:       "¡Noticia registrada exitosamente!",
		FailurePrefix: "Error al registrar la noticia",
	}
)

// Entities lists every form by name.
var Entities = map[string]Entity{
	Evento.Name:  Evento,
	Equipo.Name:  Equipo,
	Miembro.Name: Miembro,
	Empresa.Name: Empresa,
	Noticia.Name: Noticia,
}
