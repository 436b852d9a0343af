package domain

// GenerationKind names one of the content lab prompts.
type GenerationKind string

const (
	KindMarketingTip  GenerationKind = "marketing_tip"
	KindSocialCaption GenerationKind = "social_caption"
	KindKeywords      GenerationKind = "keywords"
)

func (k GenerationKind) String() string {
	return string(k)
}
