package deepgram

type deepgramVoice string

// Spanish Aura 2 voices.
const (
	VoiceCeleste  deepgramVoice = "aura-2-celeste-es"
	VoiceEstrella deepgramVoice = "aura-2-estrella-es"
	VoiceNestor   deepgramVoice = "aura-2-nestor-es"
	VoiceSirio    deepgramVoice = "aura-2-sirio-es"
	VoiceCarina   deepgramVoice = "aura-2-carina-es"
	VoiceAlvaro   deepgramVoice = "aura-2-alvaro-es"
	VoiceDiana    deepgramVoice = "aura-2-diana-es"
	VoiceAquila   deepgramVoice = "aura-2-aquila-es"
	VoiceSelena   deepgramVoice = "aura-2-selena-es"
	VoiceJavier   deepgramVoice = "aura-2-javier-es"

	defaultVoice = VoiceNestor
)

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{
		VoiceCeleste,
		VoiceEstrella,
		VoiceNestor,
		VoiceSirio,
		VoiceCarina,
		VoiceAlvaro,
		VoiceDiana,
		VoiceAquila,
		VoiceSelena,
		VoiceJavier,
	}
}

func ParseVoice(name string) (deepgramVoice, bool) {
	for _, voice := range GetAvailableVoices() {
		if string(voice) == name {
			return voice, true
		}
	}
	return "", false
}
