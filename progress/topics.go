package progress

import "strings"

// Topic catalogs for the math and ML tracks.
var MathCourseTopics = []string{
	"math_vectors_operations",
	"math_matrices_operations",
	"math_eigenvalues_vectors",
	"math_orthogonality_projections",
	"math_svd_pca",
	"math_derivatives_partial",
	"math_gradients_chain_rule",
	"math_gradient_descent",
	"math_adam_optimizers",
	"math_convex_functions",
	"math_loss_functions",
	"math_regularization",
	"math_random_variables",
	"math_expectation_variance",
	"math_bayes_theorem",
	"math_mle",
	"math_entropy_divergence",
}

var MLCourseTopics = []string{
	"ml_introduction",
	"ml_task_types",
	"ml_supervised_unsupervised",
	"ml_overfitting_underfitting",
	"ml_validation_testing",
	"ml_linear_regression",
	"ml_logistic_regression",
	"ml_decision_trees",
	"ml_random_forest",
	"ml_svm",
	"ml_kmeans_clustering",
	"ml_neural_networks",
	"ml_feature_engineering",
	"ml_model_evaluation",
}

// Course is one learning track: an ordered topic list shown by /learn.
type Course struct {
	ID     string
	Name   string
	Topics []string
}

// Courses returns the available tracks in menu order.
func Courses() []Course {
	return []Course{
		{ID: "math", Name: "Математика для ML", Topics: MathCourseTopics},
		{ID: "ml", Name: "Основы машинного обучения", Topics: MLCourseTopics},
	}
}

var topicTitles = map[string]string{
	"math_vectors_operations":        "Векторы и операции над ними",
	"math_matrices_operations":       "Матрицы и операции над ними",
	"math_eigenvalues_vectors":       "Собственные значения и векторы",
	"math_orthogonality_projections": "Ортогональность и проекции",
	"math_svd_pca":                   "Сингулярное разложение и PCA",
	"math_derivatives_partial":       "Производные и частные производные",
	"math_gradients_chain_rule":      "Градиенты и правило цепочки",
	"math_gradient_descent":          "Градиентный спуск",
	"math_adam_optimizers":           "Оптимизаторы (Adam и другие)",
	"math_convex_functions":          "Выпуклые функции",
	"math_loss_functions":            "Функции потерь",
	"math_regularization":            "Регуляризация",
	"math_random_variables":          "Случайные величины",
	"math_expectation_variance":      "Математическое ожидание и дисперсия",
	"math_bayes_theorem":             "Теорема Байеса",
	"math_mle":                       "Метод максимального правдоподобия",
	"math_entropy_divergence":        "Энтропия и дивергенция",
	"ml_introduction":                "Введение в машинное обучение",
	"ml_task_types":                  "Типы задач машинного обучения",
	"ml_supervised_unsupervised":     "Обучение с учителем и без",
	"ml_overfitting_underfitting":    "Переобучение и недообучение",
	"ml_validation_testing":          "Валидация и тестирование",
	"ml_linear_regression":           "Линейная регрессия",
	"ml_logistic_regression":         "Логистическая регрессия",
	"ml_decision_trees":              "Деревья решений",
	"ml_random_forest":               "Случайный лес",
	"ml_svm":                         "Метод опорных векторов",
	"ml_kmeans_clustering":           "Кластеризация k-средних",
	"ml_neural_networks":             "Нейронные сети",
	"ml_feature_engineering":         "Конструирование признаков",
	"ml_model_evaluation":            "Оценка качества моделей",
}

// TopicTitle returns the user-facing Russian name of a topic, or the raw id
// when the catalog has no entry.
func TopicTitle(id string) string {
	if title, ok := topicTitles[id]; ok {
		return title
	}
	return id
}

type topicRule struct {
	topicID  string
	keywords []string
}

// Matched in order; a question can touch several topics.
var topicRules = []topicRule{
	{topicID: "math_vectors_operations", keywords: []string{"вектор"}},
	{topicID: "math_matrices_operations", keywords: []string{"матриц", "транспон"}},
	{topicID: "math_eigenvalues_vectors", keywords: []string{"собственн", "eigen", "характерист"}},
	{topicID: "math_gradient_descent", keywords: []string{"градиентный спуск", "градиент"}},
	{topicID: "math_adam_optimizers", keywords: []string{"adam", "оптимизатор"}},
	{topicID: "math_loss_functions", keywords: []string{"функция потерь", "loss"}},
	{topicID: "math_regularization", keywords: []string{"регуляризац"}},
	{topicID: "math_bayes_theorem", keywords: []string{"байес"}},
	{topicID: "ml_linear_regression", keywords: []string{"линейная регресси"}},
	{topicID: "ml_logistic_regression", keywords: []string{"логистическ"}},
	{topicID: "ml_decision_trees", keywords: []string{"дерево решений", "деревья решений"}},
	{topicID: "ml_random_forest", keywords: []string{"случайный лес"}},
	{topicID: "ml_svm", keywords: []string{"опорных векторов", "svm"}},
	{topicID: "ml_kmeans_clustering", keywords: []string{"кластер", "k-means"}},
	{topicID: "ml_neural_networks", keywords: []string{"нейронн", "нейросет"}},
	{topicID: "ml_overfitting_underfitting", keywords: []string{"переобучен", "недообучен"}},
	{topicID: "ml_validation_testing", keywords: []string{"валидац", "кросс-валидац"}},
	{topicID: "ml_feature_engineering", keywords: []string{"признак"}},
}

// DetectTopics maps a user question onto course topic ids via keyword rules.
func DetectTopics(question string) []string {
	lower := strings.ToLower(question)
	seen := make(map[string]bool)
	var out []string
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				if !seen[rule.topicID] {
					seen[rule.topicID] = true
					out = append(out, rule.topicID)
				}
				break
			}
		}
	}
	return out
}
