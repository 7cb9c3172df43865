package scaffolding

// Template describes one entry of the built-in catalog.
type Template struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Author      *string `json:"author" yaml:"author,omitempty"`
}

type builtinTemplate struct {
	Template
	Content string
}

// catalog is fixed at build time; callers only ever get copies.
var catalog = []builtinTemplate{
	{
		Template: Template{
			ID:          "article",
			Name:        "Article",
			Description: "Basic LaTeX article template",
			Author:      strPtr("LaTeX"),
		},
		Content: articleTemplate,
	},
	{
		Template: Template{
			ID:          "ieeetran",
			Name:        "IEEE Conference",
			Description: "IEEE conference paper template",
			Author:      strPtr("IEEE"),
		},
		Content: ieeeTemplate,
	},
	{
		Template: Template{
			ID:          "acmart",
			Name:        "ACM Article",
			Description: "ACM conference/journal template",
			Author:      strPtr("ACM"),
		},
		Content: acmTemplate,
	},
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, t := range catalog {
		idx[t.ID] = i
	}
	return idx
}()

func strPtr(s string) *string { return &s }

const articleTemplate = `\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage{amsmath}
\usepackage{graphicx}

\title{Your Paper Title}
\author{Your Name}
\date{\today}

\begin{document}

\maketitle

\begin{abstract}
Your abstract goes here.
\end{abstract}

\section{Introduction}
Write your introduction here.

\section{Related Work}
Discuss related work.

\section{Methodology}
Describe your methodology.

\section{Results}
Present your results.

\section{Conclusion}
Conclude your paper.

\bibliographystyle{plain}
\bibliography{refs}

\end{document}
`

const ieeeTemplate = `\documentclass[conference]{IEEEtran}
\usepackage{cite}
\usepackage{amsmath,amssymb,amsfonts}
\usepackage{algorithmic}
\usepackage{graphicx}
\usepackage{textcomp}

\begin{document}

\title{Conference Paper Title}

\author{\IEEEauthorblockN{Author Name}
\IEEEauthorblockA{\textit{Dept. of Computer Science} \\
\textit{University Name}\\
City, Country \\
email@university.edu}}

\maketitle

\begin{abstract}
This document is a template for IEEE conference papers.
\end{abstract}

\begin{IEEEkeywords}
keyword1, keyword2, keyword3
\end{IEEEkeywords}

\section{Introduction}
Write your introduction here.

\section{Related Work}
Discuss related work.

\section{Proposed Method}
Describe your method.

\section{Experimental Results}
Present your results.

\section{Conclusion}
Conclude your paper.

\bibliographystyle{IEEEtran}
\bibliography{refs}

\end{document}
`

const acmTemplate = `\documentclass[sigconf]{acmart}

\begin{document}

\title{Your Paper Title}

\author{Author Name}
\affiliation{%
  \institution{University Name}
  \city{City}
  \country{Country}
}
\email{email@university.edu}

\begin{abstract}
Your abstract goes here.
\end{abstract}

\keywords{keyword1, keyword2, keyword3}

\maketitle

\section{Introduction}
Write your introduction here.

\section{Related Work}
Discuss related work.

\section{Approach}
Describe your approach.

\section{Evaluation}
Present your evaluation.

\section{Conclusion}
Conclude your paper.

\bibliographystyle{ACM-Reference-Format}
\bibliography{refs}

\end{document}
`

// bibliographyStub is written to refs.bib for every new project.
const bibliographyStub = `@article{example2024,
  title={Example Paper Title},
  author={Author, First and Author, Second},
  journal={Journal Name},
  year={2024},
  volume={1},
  number={1},
  pages={1--10}
}
`

const gitignoreContent = `# Output files
out/
*.pdf
*.aux
*.log
*.synctex.gz
*.fdb_latexmk
*.fls
*.toc
*.bbl
*.blg

# OS files
.DS_Store
Thumbs.db

# Editor files
*.swp
*.swo
*~

# EasyPaper cache
.easypaper/cache/
`
