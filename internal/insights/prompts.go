package insights

import (
	"encoding/json"
	"fmt"
)

func analyzePrompt(summary []ListSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	return fmt.Sprintf(`Atue como um consultor financeiro pessoal inteligente e empático.
Analise os seguintes dados de planejamento de compras do usuário:
%s

Forneça %d insights curtos, diretos e úteis (no máximo 2 frases cada).
Classifique cada um como 'success', 'warning' ou 'info'.

Retorne APENAS um JSON array puro com o formato:
[
  { "title": "Título curto", "message": "Mensagem clara.", "type": "warning" }
]
Não use markdown code blocks.`, data, MaxInsights), nil
}

func draftPrompt(text string) string {
	return fmt.Sprintf(`Você ajuda o usuário a montar uma lista de compras com meta de economia.
Pedido do usuário:
%q

Crie uma lista com nome curto, um objetivo e os produtos necessários.
Quando o usuário não informar o preço de um produto, estime o preço médio de mercado no Brasil.
Use prioridade "Alta", "Média" ou "Baixa" e, se fizer sentido, algumas tags curtas.

Retorne APENAS um objeto JSON puro com o formato:
{
  "name": "Nome da lista",
  "goal": "Objetivo",
  "products": [
    { "name": "Produto", "price": 199.9, "quantity": 1, "priority": "Média", "tags": ["tag"] }
  ]
}
Não use markdown code blocks.`, text)
}
