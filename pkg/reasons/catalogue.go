// Package reasons contiene el catálogo estático de motivos de ajuste usado en
// los conteos cíclicos. El código viaja en cada movimiento; la descripción se
// resuelve al generar el documento de ajuste.
package reasons

// Catálogo de motivos de ajuste (código -> descripción).
var catalogue = map[string]string{
	"1": "Daño en bodega",
	"2": "Daño en transporte",
	"3": "Vencido en estantería",
	"4": "Liberación de retención de calidad",
	"5": "Error de digitación en recepción",
	"6": "Devolución de cliente",
	"7": "Reclasificación por rotulado",
	"9": "Otro (ver observaciones)",
}

// Describe devuelve la descripción del motivo. Si el código no está en el
// catálogo devuelve el código tal cual: el catálogo es consultivo, no un gate.
func Describe(code string) string {
	if desc, ok := catalogue[code]; ok {
		return desc
	}
	return code
}

// IsKnown indica si el código pertenece al catálogo.
func IsKnown(code string) bool {
	_, ok := catalogue[code]
	return ok
}

// Codes devuelve los códigos del catálogo (orden no garantizado).
func Codes() []string {
	out := make([]string, 0, len(catalogue))
	for c := range catalogue {
		out = append(out, c)
	}
	return out
}
