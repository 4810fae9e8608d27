package parse

import (
	"strings"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

var greetings = []string{
	"hola", "holaa", "holaaa", "buenas", "buenos días", "buenos dias",
	"buenas tardes", "buenas noches", "hi", "hello", "hey", "que tal", "qué tal",
}

var scheduleKeywords = []string{
	"agendar", "agenda", "visita", "cita", "visitarlos", "ir a ver",
	"conocer el proyecto", "reservar", "programar",
}

var searchNouns = []string{
	"departamento", "departamentos", "depa", "depas", "dpto", "apartamento",
	"apartamentos", "casa", "casas", "oficina", "oficinas", "inmueble",
	"inmuebles", "propiedad", "propiedades", "proyecto", "disponible",
	"disponibles",
}

var attributeKeywords = []string{
	"precio", "cuesta", "vale", "piso", "disponib", "área", "area",
	"metros", "m2", "mantenimiento",
}

var projectNouns = []string{"proyecto", "torre", "residencial", "edificio", "condominio", "jardines"}

var affirmatives = []string{
	"sí", "si", "confirmo", "confirmar", "dale", "ok", "okay", "claro",
	"de acuerdo", "perfecto", "por supuesto",
}

var cancellations = []string{
	"cancelar", "cancela", "ya no", "olvídalo", "olvidalo", "no quiero agendar",
	"mejor no", "dejémoslo", "dejemoslo",
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// IsGreeting reports whether the whole message is a salutation, optionally
// followed by punctuation.
func IsGreeting(text string) bool {
	t := strings.Trim(normalize(text), "!¡¿?., ")
	for _, g := range greetings {
		if t == g {
			return true
		}
	}
	return false
}

func HasScheduleSignal(text string) bool {
	t := normalize(text)
	for _, kw := range scheduleKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// HasSearchSignal reports whether the message is shaped like a property
// search: a bedroom quantity, a known district or a property noun.
func HasSearchSignal(text string) bool {
	t := normalize(text)
	if bedroomRe.MatchString(t) || studioRe.MatchString(t) {
		return true
	}
	for token := range districts {
		if strings.Contains(t, token) {
			return true
		}
	}
	for _, noun := range searchNouns {
		if containsWord(t, noun) {
			return true
		}
	}
	return false
}

// MentionsProject reports whether the message names a project-like entity,
// which means a follow-up is not about the previously resolved one.
func MentionsProject(text string) bool {
	t := normalize(text)
	for _, noun := range projectNouns {
		if containsWord(t, noun) {
			return true
		}
	}
	return false
}

// IsAttributeFollowUp matches short interrogatives about an attribute of an
// already-discussed property ("¿cuál era el precio?", "en qué piso está").
func IsAttributeFollowUp(text string) bool {
	t := normalize(text)
	if len(strings.Fields(t)) > 8 {
		return false
	}
	if MentionsProject(t) {
		return false
	}
	for _, kw := range attributeKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

func IsAffirmative(text string) bool {
	t := strings.Trim(normalize(text), "!¡¿?., ")
	for _, a := range affirmatives {
		if t == a || strings.HasPrefix(t, a+" ") || strings.HasPrefix(t, a+",") {
			return true
		}
	}
	return false
}

func IsCancellation(text string) bool {
	t := normalize(text)
	for _, c := range cancellations {
		if strings.Contains(t, c) {
			return true
		}
	}
	return false
}

// FallbackIntent is the keyword classifier used when the model gateway is
// unavailable or returns garbage.
func FallbackIntent(text string) contractx.Intent {
	switch {
	case HasScheduleSignal(text):
		return contractx.IntentScheduleVisit
	case HasSearchSignal(text):
		return contractx.IntentPropertySearch
	case IsGreeting(text):
		return contractx.IntentOnboarding
	default:
		return contractx.IntentPropertySearch
	}
}
