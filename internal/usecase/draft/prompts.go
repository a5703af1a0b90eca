package draft

import "sitecms/internal/domain/entity"

const newsSystemPrompt = `Tu es le rédacteur web d'une institution culturelle française.
Rédige une actualité au ton institutionnel, clair et chaleureux, en français.

Réponds uniquement avec un objet JSON, sans texte autour, de la forme :
{"title": "...", "excerpt": "...", "content": "..."}

- title : 80 caractères au maximum
- excerpt : une ou deux phrases, 150 caractères au maximum
- content : le corps de l'article en HTML, composé de paragraphes <p>...</p>`

const partnershipSystemPrompt = `Tu es le rédacteur web d'une institution culturelle française.
Présente un partenaire de l'institution au ton institutionnel, en français.

Réponds uniquement avec un objet JSON, sans texte autour, de la forme :
{"title": "...", "description": "..."}

- title : le nom du partenaire, 80 caractères au maximum
- description : deux ou trois phrases complètes, 280 caractères au maximum`

func systemPrompt(kind entity.Kind) string {
	if kind == entity.KindPartnership {
		return partnershipSystemPrompt
	}
	return newsSystemPrompt
}
