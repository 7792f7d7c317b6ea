package domain

// Equipment types recognized by the defect catalog.
const (
	EquipmentComputer = "Computador"
	EquipmentPrinter  = "Impressora"
	EquipmentMonitor  = "Monitor"
	EquipmentOther    = "Outro"
)

var computerDefects = []string{
	"Computador não liga",
	"Computador lento",
	"Tela azul",
	"Sistema travando",
	"Erro de disco",
	"Problema com atualização",
	"Desligamento inesperado",
	"Problemas de internet",
	"Problema com Wi-Fi",
	"Sem conexão de rede",
	"Mouse não funciona",
	"Teclado não funciona",
}

var printerDefects = []string{
	"Impressora não imprime",
	"Impressão borrada",
	"Toner vazio",
	"Troca de toner",
	"Papel enroscado",
	"Erro de conexão com a impressora",
}

var genericDefects = []string{
	"Solicitação de suporte geral",
	"Outros tipos de defeito",
}

// DefectTypesFor returns the defect categories offered for an equipment
// type. Unknown or empty equipment types get the generic list.
func DefectTypesFor(equipmentType string) []string {
	switch equipmentType {
	case EquipmentComputer:
		return append([]string(nil), computerDefects...)
	case EquipmentPrinter:
		return append([]string(nil), printerDefects...)
	default:
		return append([]string(nil), genericDefects...)
	}
}

// ValidDefectType reports whether defectType belongs to the catalog for
// the given equipment type.
func ValidDefectType(equipmentType, defectType string) bool {
	for _, d := range DefectTypesFor(equipmentType) {
		if d == defectType {
			return true
		}
	}
	return false
}
